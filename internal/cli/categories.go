package cli

import (
	"context"

	"github.com/dmitrijs2005/writer/internal/common"
	"github.com/dmitrijs2005/writer/internal/models"
)

func (a *App) Categories(ctx context.Context) error {
	list, err := a.categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range list {
		mark := " "
		if c.ID == a.category {
			mark = "*"
		}
		if models.IsMain(c.ID) {
			a.printf("%s  main  %s\n", mark, c.Name)
			continue
		}
		a.printf("%s %5d  %s\n", mark, c.ID, c.Name)
	}
	return nil
}

// SelectCategory makes ref the category that list and new work in.
func (a *App) SelectCategory(ctx context.Context, ref string) error {
	id, err := parseCategory(ref)
	if err != nil {
		return err
	}
	c, err := a.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	a.category = c.ID
	a.printf("Now in %s.\n", c.Name)
	return nil
}

func (a *App) AddCategory(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Category name", a.out)
	if err != nil {
		return err
	}
	c, err := a.categories.Create(ctx, name)
	if err != nil {
		return err
	}
	a.printf("Category %q created (#%d).\n", c.Name, c.ID)
	return nil
}

func (a *App) RenameCategory(ctx context.Context, ref string) error {
	id, err := parseCategory(ref)
	if err != nil {
		return err
	}
	if models.IsMain(id) {
		return common.ErrMainCategory
	}
	name, err := GetSimpleText(a.reader, "New name", a.out)
	if err != nil {
		return err
	}
	if err := a.categories.Rename(ctx, id, name); err != nil {
		return err
	}
	a.println("Category renamed.")
	return nil
}

// DeleteCategory removes a category together with all of its notes.
func (a *App) DeleteCategory(ctx context.Context, ref string) error {
	id, err := parseCategory(ref)
	if err != nil {
		return err
	}
	if models.IsMain(id) {
		return common.ErrMainCategory
	}
	c, err := a.categories.Get(ctx, id)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, "Deleting \""+c.Name+"\" also deletes every note in it. Continue?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrCancelled
	}
	n, err := a.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if a.category == id {
		a.category = models.MainCategoryID
	}
	a.printf("Category deleted with %d note(s).\n", n)
	return nil
}
