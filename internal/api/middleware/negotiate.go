package middleware

import (
	"net/http"

	"github.com/munnerz/goautoneg"
)

// PrefersHTML reports whether the client would rather receive an HTML page
// than JSON. A missing Accept header or a tie counts as HTML; a header that
// accepts neither does not.
func PrefersHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}

	clauses := goautoneg.ParseAccept(accept)
	html := quality(clauses, "text", "html")
	json := quality(clauses, "application", "json")
	return html > 0 && html >= json
}

// quality returns the q-value of the most specific clause matching the type.
func quality(clauses []goautoneg.Accept, typ, subtype string) float64 {
	q, specificity := 0.0, -1
	for _, clause := range clauses {
		s := -1
		switch {
		case clause.Type == typ && clause.SubType == subtype:
			s = 2
		case clause.Type == typ && clause.SubType == "*":
			s = 1
		case clause.Type == "*" && clause.SubType == "*":
			s = 0
		}
		if s > specificity {
			q, specificity = clause.Q, s
		}
	}
	return q
}
