package elm

import "encoding/json"

func decodeQuery(raw json.RawMessage) (Expression, error) {
	var s struct {
		Element
		Source []struct {
			Alias      string          `json:"alias"`
			Expression json.RawMessage `json:"expression"`
		} `json:"source"`
		Let []struct {
			Identifier string          `json:"identifier"`
			Expression json.RawMessage `json:"expression"`
		} `json:"let,omitempty"`
		Relationship []struct {
			Type       string          `json:"type"`
			Alias      string          `json:"alias"`
			Expression json.RawMessage `json:"expression"`
			SuchThat   json.RawMessage `json:"suchThat"`
		} `json:"relationship,omitempty"`
		Where json.RawMessage `json:"where,omitempty"`
		Return *struct {
			Distinct   bool            `json:"distinct"`
			Expression json.RawMessage `json:"expression"`
		} `json:"return,omitempty"`
		Aggregate json.RawMessage `json:"aggregate,omitempty"`
		Sort      *struct {
			By []SortByItem `json:"by,omitempty"`
		} `json:"sort,omitempty"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}

	q := &Query{Element: s.Element}

	q.Source = make([]AliasedQuerySource, len(s.Source))
	for i, src := range s.Source {
		e, err := DecodeExpression(src.Expression)
		if err != nil {
			return nil, err
		}
		q.Source[i] = AliasedQuerySource{Alias: src.Alias, Expression: e}
	}

	for _, lc := range s.Let {
		e, err := DecodeExpression(lc.Expression)
		if err != nil {
			return nil, err
		}
		q.Let = append(q.Let, LetClause{Identifier: lc.Identifier, Expression: e})
	}

	for _, r := range s.Relationship {
		e, err := DecodeExpression(r.Expression)
		if err != nil {
			return nil, err
		}
		st, err := DecodeExpression(r.SuchThat)
		if err != nil {
			return nil, err
		}
		q.Relationship = append(q.Relationship, RelationshipClause{
			Without: r.Type == "Without", Expression: e, Alias: r.Alias, SuchThat: st,
		})
	}

	if len(s.Where) > 0 {
		w, err := DecodeExpression(s.Where)
		if err != nil {
			return nil, err
		}
		q.Where = w
	}

	if s.Return != nil {
		e, err := DecodeExpression(s.Return.Expression)
		if err != nil {
			return nil, err
		}
		q.Return = &ReturnClause{Distinct: s.Return.Distinct, Expression: e}
	}

	if len(s.Aggregate) > 0 {
		a, err := DecodeExpression(s.Aggregate)
		if err != nil {
			return nil, err
		}
		if agg, ok := a.(*Aggregate); ok {
			q.Aggregate = agg
		}
	}

	if s.Sort != nil {
		q.Sort = &SortClause{By: s.Sort.By}
	}

	return q, nil
}
