package routing

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// journal mirrors every variable, constraint and objective term handed to
// the solver, under the model's own names. It backs the serialized program
// written for audit and the structural assertions in tests; the solver never
// reads it.
type journal struct {
	maximize    bool
	objective   []journalTerm
	vars        []journalVar
	constraints []*journalConstraint
}

type journalVar struct {
	name   string
	binary bool
	lb     float64
	ub     float64
}

type journalTerm struct {
	coef float64
	name string
}

type journalConstraint struct {
	name   string
	symbol string
	rhs    float64
	terms  []journalTerm
}

func (j *journal) addBinary(name string) {
	j.vars = append(j.vars, journalVar{name: name, binary: true, ub: 1})
}

func (j *journal) addContinuous(name string, lb, ub float64) {
	j.vars = append(j.vars, journalVar{name: name, lb: lb, ub: ub})
}

func (j *journal) addObjectiveTerm(coef float64, name string) {
	j.objective = append(j.objective, journalTerm{coef: coef, name: name})
}

func (j *journal) addConstraint(name, symbol string, rhs float64) *journalConstraint {
	c := &journalConstraint{name: name, symbol: symbol, rhs: rhs}
	j.constraints = append(j.constraints, c)
	return c
}

func (c *journalConstraint) addTerm(coef float64, name string) {
	c.terms = append(c.terms, journalTerm{coef: coef, name: name})
}

func (j *journal) findConstraint(name string) *journalConstraint {
	for _, c := range j.constraints {
		if c.name == name {
			return c
		}
	}
	return nil
}

// writeLP serializes the program in LP format, one constraint per line.
func (j *journal) writeLP(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if j.maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	bw.WriteString(" obj:")
	bw.WriteString(formatTerms(j.objective))
	bw.WriteString("\nSubject To\n")
	for _, c := range j.constraints {
		bw.WriteString(" ")
		bw.WriteString(c.name)
		bw.WriteString(":")
		bw.WriteString(formatTerms(c.terms))
		bw.WriteString(" ")
		bw.WriteString(c.symbol)
		bw.WriteString(" ")
		bw.WriteString(formatNumber(c.rhs))
		bw.WriteString("\n")
	}
	bw.WriteString("Bounds\n")
	for _, v := range j.vars {
		if v.binary {
			continue
		}
		bw.WriteString(" ")
		bw.WriteString(formatNumber(v.lb))
		bw.WriteString(" <= ")
		bw.WriteString(v.name)
		bw.WriteString(" <= ")
		bw.WriteString(formatNumber(v.ub))
		bw.WriteString("\n")
	}
	bw.WriteString("Binaries\n")
	for _, v := range j.vars {
		if !v.binary {
			continue
		}
		bw.WriteString(" ")
		bw.WriteString(v.name)
		bw.WriteString("\n")
	}
	bw.WriteString("End\n")
	return bw.Flush()
}

func formatTerms(terms []journalTerm) string {
	var sb strings.Builder
	for _, t := range terms {
		if t.coef < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(formatNumber(math.Abs(t.coef)))
		sb.WriteString(" ")
		sb.WriteString(t.name)
	}
	return sb.String()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
