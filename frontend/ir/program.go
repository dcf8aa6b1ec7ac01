package ir

// Program is one compilation unit: a body of statements and, optionally, a
// final expression whose value the program computes. Result may refer to
// anything bound at the top level of Body.
type Program struct {
	Body   *Block
	Result Expr
}

func ProgramString(p *Program) string {
	body := StmtString(p.Body)
	if p.Result == nil {
		return body
	}
	if body != "" {
		body += "\n"
	}
	return body + ExprString(p.Result)
}

// Inputs lists the declarations of p in order.
func (p *Program) Inputs() []*Declare {
	return Inputs(p.Body)
}
