package ir

import (
	"cmp"

	"github.com/hashicorp/go-set/v3"
)

func compareVars(a, b *Var) int {
	return cmp.Compare(a.Name, b.Name)
}

// FreeVars returns the variables e refers to, ordered by name.
func FreeVars(e Expr) *set.TreeSet[*Var] {
	vars := set.NewTreeSet(compareVars)
	collectVars(e, vars)
	return vars
}

// FreeVarsStmt returns the variables s refers to that s does not bind
// itself, ordered by name.
func FreeVarsStmt(s Stmt) *set.TreeSet[*Var] {
	used := set.NewTreeSet(compareVars)
	bound := set.New[string](0)
	WalkStmt(s, func(stmt Stmt) {
		switch stmt := stmt.(type) {
		case *Let:
			bound.Insert(stmt.Name)
		case *For:
			bound.Insert(stmt.Var)
		case *Declare:
			bound.Insert(stmt.Name)
		}
	})
	s.TransformExprs(func(e Expr) Expr {
		collectVars(e, used)
		return e
	})
	free := set.NewTreeSet(compareVars)
	for v := range used.Items() {
		if !bound.Contains(v.Name) {
			free.Insert(v)
		}
	}
	return free
}

func collectVars(e Expr, into *set.TreeSet[*Var]) {
	e.Transform(func(sub Expr) Expr {
		if v, ok := sub.(*Var); ok {
			into.Insert(v)
		}
		return sub
	})
}

// Mentions reports whether e refers to a variable called name.
func Mentions(e Expr, name string) bool {
	found := false
	e.Transform(func(sub Expr) Expr {
		if v, ok := sub.(*Var); ok && v.Name == name {
			found = true
		}
		return sub
	})
	return found
}
