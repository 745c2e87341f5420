package ast

// Inspect traverses the tree rooted at node in depth-first order. It calls fn
// for each node; if fn returns false the children of that node are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *SourceUnit:
		for _, c := range n.Contracts {
			Inspect(c, fn)
		}
	case *Contract:
		for _, a := range n.Annotations {
			Inspect(a, fn)
		}
		for _, b := range n.Bases {
			Inspect(b, fn)
		}
		for _, s := range n.Structs {
			Inspect(s, fn)
		}
		for _, v := range n.Variables {
			Inspect(v, fn)
		}
		for _, f := range n.Functions {
			Inspect(f, fn)
		}
	case *BaseSpec:
		inspectExprs(n.Args, fn)
	case *Annotation:
		inspectExprs(n.Args, fn)
	case *Struct:
		for _, f := range n.Fields {
			Inspect(f, fn)
		}
	case *Variable:
		if n.Init != nil {
			Inspect(n.Init, fn)
		}
	case *Function:
		for _, a := range n.Annotations {
			Inspect(a, fn)
		}
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		for _, p := range n.Returns {
			Inspect(p, fn)
		}
		for _, b := range n.BaseCalls {
			Inspect(b, fn)
		}
		if n.Body != nil {
			Inspect(n.Body, fn)
		}
	case *Param:
		if n.Annotation != nil {
			Inspect(n.Annotation, fn)
		}
	case *Block:
		for _, s := range n.Stmts {
			Inspect(s, fn)
		}
	case *VarDeclStmt:
		if n.Init != nil {
			Inspect(n.Init, fn)
		}
	case *ExprStmt:
		Inspect(n.X, fn)
	case *AssignStmt:
		Inspect(n.Target, fn)
		Inspect(n.Value, fn)
	case *ReturnStmt:
		inspectExprs(n.Values, fn)
	case *IfStmt:
		Inspect(n.Cond, fn)
		Inspect(n.Then, fn)
		if n.Else != nil {
			Inspect(n.Else, fn)
		}
	case *WhileStmt:
		Inspect(n.Cond, fn)
		Inspect(n.Body, fn)
	case *ForStmt:
		if n.Init != nil {
			Inspect(n.Init, fn)
		}
		if n.Cond != nil {
			Inspect(n.Cond, fn)
		}
		if n.Post != nil {
			Inspect(n.Post, fn)
		}
		Inspect(n.Body, fn)
	case *ArrayLit:
		inspectExprs(n.Elems, fn)
	case *MemberExpr:
		Inspect(n.Target, fn)
	case *IndexExpr:
		Inspect(n.Target, fn)
		Inspect(n.Index, fn)
	case *CallOption:
		Inspect(n.Value, fn)
	case *CallExpr:
		Inspect(n.Callee, fn)
		for _, o := range n.Options {
			Inspect(o, fn)
		}
		inspectExprs(n.Args, fn)
	case *NewExpr:
		for _, o := range n.Options {
			Inspect(o, fn)
		}
		inspectExprs(n.Args, fn)
	case *BinaryExpr:
		Inspect(n.Left, fn)
		Inspect(n.Right, fn)
	case *UnaryExpr:
		Inspect(n.X, fn)
	}
}

func inspectExprs(exprs []Expr, fn func(Node) bool) {
	for _, e := range exprs {
		Inspect(e, fn)
	}
}
