package ast

import (
	"fmt"
	"strings"
)

func (i *Ident) String() string {
	return i.Value
}

func (su *SourceUnit) String() string {
	var parts []string
	for _, c := range su.Contracts {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, "\n\n")
}

func (c *Contract) String() string {
	var b strings.Builder

	for _, a := range c.Annotations {
		b.WriteString(a.String() + "\n")
	}
	b.WriteString(fmt.Sprintf("%s %s", c.Kind, c.Name.Value))
	if len(c.Bases) > 0 {
		var bases []string
		for _, base := range c.Bases {
			bases = append(bases, base.String())
		}
		b.WriteString(" is " + strings.Join(bases, ", "))
	}
	b.WriteString(" {\n")
	for _, s := range c.Structs {
		b.WriteString("  " + strings.ReplaceAll(s.String(), "\n", "\n  ") + "\n")
	}
	for _, v := range c.Variables {
		b.WriteString("  " + v.String() + "\n")
	}
	for _, f := range c.Functions {
		b.WriteString("  " + strings.ReplaceAll(f.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")

	return b.String()
}

func (b *BaseSpec) String() string {
	if !b.HasArgs {
		return b.Name.Value
	}
	return b.Name.Value + "(" + joinExprs(b.Args) + ")"
}

func (a *Annotation) String() string {
	if len(a.Args) == 0 {
		return "@" + a.Name.Value
	}
	return "@" + a.Name.Value + "(" + joinExprs(a.Args) + ")"
}

func (s *Struct) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("struct %s {\n", s.Name.Value))
	for _, f := range s.Fields {
		b.WriteString("  " + f.String() + ";\n")
	}
	b.WriteString("}")
	return b.String()
}

func (v *Variable) String() string {
	parts := []string{v.Type.String()}
	if v.Visibility != VisDefault {
		parts = append(parts, v.Visibility.String())
	}
	if v.Constant {
		parts = append(parts, "constant")
	}
	if v.Immutable {
		parts = append(parts, "immutable")
	}
	parts = append(parts, v.Name.Value)
	s := strings.Join(parts, " ")
	if v.Init != nil {
		s += " = " + v.Init.String()
	}
	return s + ";"
}

func (f *Function) String() string {
	var b strings.Builder

	for _, a := range f.Annotations {
		b.WriteString(a.String() + "\n")
	}
	if f.Kind == FuncConstructor {
		b.WriteString("constructor(")
	} else {
		b.WriteString("function " + f.Name.Value + "(")
	}
	b.WriteString(joinParams(f.Params) + ")")
	for _, base := range f.BaseCalls {
		b.WriteString(" " + base.String())
	}
	if f.Visibility != VisDefault {
		b.WriteString(" " + f.Visibility.String())
	}
	if f.Mutability != Nonpayable {
		b.WriteString(" " + f.Mutability.String())
	}
	if f.Virtual {
		b.WriteString(" virtual")
	}
	if f.Override != nil {
		b.WriteString(" " + f.Override.String())
	}
	if len(f.Returns) > 0 {
		b.WriteString(" returns (" + joinParams(f.Returns) + ")")
	}
	if f.Body == nil {
		b.WriteString(";")
	} else {
		b.WriteString(" " + f.Body.String())
	}
	return b.String()
}

func (o *OverrideSpec) String() string {
	if len(o.Bases) == 0 {
		return "override"
	}
	var names []string
	for _, base := range o.Bases {
		names = append(names, base.Value)
	}
	return "override(" + strings.Join(names, ", ") + ")"
}

func (p *Param) String() string {
	s := p.Type.String()
	if p.Annotation != nil {
		s = p.Annotation.String() + " " + s
	}
	if p.Name != nil {
		s += " " + p.Name.Value
	}
	return s
}

func (t *TypeExpr) String() string {
	var s string
	if t.IsMapping() {
		s = fmt.Sprintf("mapping(%s => %s)", t.Key, t.Value)
	} else {
		s = t.Name.Value
	}
	for _, d := range t.Dims {
		if d.Fixed {
			s += fmt.Sprintf("[%d]", d.Size)
		} else {
			s += "[]"
		}
	}
	return s
}

func (b *Block) String() string {
	if len(b.Stmts) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString("  " + strings.ReplaceAll(s.String(), "\n", "\n  ") + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (v *VarDeclStmt) String() string {
	if v.Init == nil {
		return fmt.Sprintf("%s %s;", v.Type, v.Name.Value)
	}
	return fmt.Sprintf("%s %s = %s;", v.Type, v.Name.Value, v.Init)
}

func (e *ExprStmt) String() string {
	return e.X.String() + ";"
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s %s %s;", a.Target, a.Op, a.Value)
}

func (r *ReturnStmt) String() string {
	switch len(r.Values) {
	case 0:
		return "return;"
	case 1:
		return "return " + r.Values[0].String() + ";"
	default:
		return "return (" + joinExprs(r.Values) + ");"
	}
}

func (i *IfStmt) String() string {
	s := fmt.Sprintf("if (%s) %s", i.Cond, i.Then)
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

func (w *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", w.Cond, w.Body)
}

func (f *ForStmt) String() string {
	var init, cond, post string
	if f.Init != nil {
		init = strings.TrimSuffix(f.Init.String(), ";")
	}
	if f.Cond != nil {
		cond = f.Cond.String()
	}
	if f.Post != nil {
		post = strings.TrimSuffix(f.Post.String(), ";")
	}
	return fmt.Sprintf("for (%s; %s; %s) %s", init, cond, post, f.Body)
}

func (b *BadStmt) String() string {
	return fmt.Sprintf("BadStmt: %s", b.Message)
}

func (b *BadExpr) String() string {
	return fmt.Sprintf("BadExpr: %s", b.Message)
}

func (i *IdentExpr) String() string {
	return i.Name.Value
}

func (n *NumberLit) String() string {
	return n.Raw
}

func (s *StringLit) String() string {
	return fmt.Sprintf("%q", s.Value)
}

func (b *BoolLit) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

func (a *ArrayLit) String() string {
	return "[" + joinExprs(a.Elems) + "]"
}

func (m *MemberExpr) String() string {
	return m.Target.String() + "." + m.Name.Value
}

func (i *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", i.Target, i.Index)
}

func (c *CallOption) String() string {
	return c.Name.Value + ": " + c.Value.String()
}

func (c *CallExpr) String() string {
	return c.Callee.String() + optionsString(c.Options) + "(" + joinExprs(c.Args) + ")"
}

func (n *NewExpr) String() string {
	return "new " + n.Contract.Value + optionsString(n.Options) + "(" + joinExprs(n.Args) + ")"
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (u *UnaryExpr) String() string {
	return u.Op + u.X.String()
}

func optionsString(opts []*CallOption) string {
	if len(opts) == 0 {
		return ""
	}
	var parts []string
	for _, o := range opts {
		parts = append(parts, o.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func joinExprs(exprs []Expr) string {
	var parts []string
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func joinParams(params []*Param) string {
	var parts []string
	for _, p := range params {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}
