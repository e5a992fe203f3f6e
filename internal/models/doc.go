// Package models defines the Writer data model: entries (notes), categories,
// and the inert sync bookkeeping both carry.
//
// Category "Main" (id -1) is synthetic. It stands for "no category" and is
// never stored as a row; entries in Main have a NULL category_id.
package models
