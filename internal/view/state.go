// Package view holds the client-side todo list state shared by the front-ends.
package view

import "todo-tracker/internal/model"

// DefaultColor is the color a new category gets when none is picked.
const DefaultColor = "#3b82f6"

// State is what a front-end knows about the server's data.
type State struct {
	Todos      []model.Todo
	Categories []model.Category
	// DateFilter narrows Visible to one YYYY-MM-DD day; empty shows everything.
	DateFilter string
	// Loading is set while an add-todo request is in flight.
	Loading bool
}

// Action is an event that changes State. See Reduce.
type Action interface {
	isAction()
}

type (
	TodosLoaded      struct{ Todos []model.Todo }
	CategoriesLoaded struct{ Categories []model.Category }
	TodoAdded        struct{ Todo model.Todo }
	CategoryAdded    struct{ Category model.Category }
	TodoReconciled   struct{ Todo model.Todo }
	TodoRemoved      struct{ ID string }
	DateFilterSet    struct{ Date string }
	LoadingSet       struct{ Loading bool }
)

func (TodosLoaded) isAction()      {}
func (CategoriesLoaded) isAction() {}
func (TodoAdded) isAction()        {}
func (CategoryAdded) isAction()    {}
func (TodoReconciled) isAction()   {}
func (TodoRemoved) isAction()      {}
func (DateFilterSet) isAction()    {}
func (LoadingSet) isAction()       {}

// Reduce returns the state after applying a. The input state is not modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case TodosLoaded:
		s.Todos = append([]model.Todo(nil), a.Todos...)
	case CategoriesLoaded:
		s.Categories = append([]model.Category(nil), a.Categories...)
	case TodoAdded:
		todos := make([]model.Todo, 0, len(s.Todos)+1)
		todos = append(todos, a.Todo)
		s.Todos = append(todos, s.Todos...)
	case CategoryAdded:
		categories := make([]model.Category, 0, len(s.Categories)+1)
		categories = append(categories, s.Categories...)
		s.Categories = append(categories, a.Category)
	case TodoReconciled:
		todos := make([]model.Todo, len(s.Todos))
		for i, t := range s.Todos {
			if t.ID == a.Todo.ID {
				t = a.Todo
			}
			todos[i] = t
		}
		s.Todos = todos
	case TodoRemoved:
		todos := make([]model.Todo, 0, len(s.Todos))
		for _, t := range s.Todos {
			if t.ID != a.ID {
				todos = append(todos, t)
			}
		}
		s.Todos = todos
	case DateFilterSet:
		s.DateFilter = a.Date
	case LoadingSet:
		s.Loading = a.Loading
	}
	return s
}

// Visible returns the todos matching the date filter.
func (s State) Visible() []model.Todo {
	if s.DateFilter == "" {
		return s.Todos
	}
	visible := make([]model.Todo, 0, len(s.Todos))
	for _, t := range s.Todos {
		if t.DueOn(s.DateFilter) {
			visible = append(visible, t)
		}
	}
	return visible
}

// Category returns the category with the given id.
func (s State) Category(id string) (model.Category, bool) {
	for _, c := range s.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return model.Category{}, false
}
