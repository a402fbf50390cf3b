package engine

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/go-cql/internal/elm"
	"github.com/cwbudde/go-cql/internal/errors"
	"github.com/cwbudde/go-cql/internal/value"
)

// String operators, grounded on DWScript's builtins_strings*.go Unicode
// handling (norm.NFC/NFD normalization, golang.org/x/text/cases for
// locale-aware casing) rather than ASCII-only strings.ToUpper/ToLower, and
// on string_helpers.go's rune-based (not byte-based) indexing idiom, since
// CQL's Length/Substring/PositionOf index by Unicode scalar.

func (e *Engine) evalConcatenate(ctx context.Context, n *elm.Concatenate, ec *EvaluationContext) (value.Value, error) {
	var b strings.Builder
	for _, operand := range n.Operand {
		v, err := e.evalOperand(ctx, operand, ec)
		if err != nil {
			return nil, err
		}
		if isNullValue(v) {
			return value.Null{}, nil
		}
		s, ok := asString(v)
		if !ok {
			return nil, errInvalidOperand("", "Concatenate requires String operands, got %T", v)
		}
		b.WriteString(s)
	}
	return value.String{Value: norm.NFC.String(b.String())}, nil
}

func (e *Engine) evalCombine(ctx context.Context, n *elm.Combine, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Source, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	elements, ok := asList(source)
	if !ok {
		return nil, errInvalidOperand("", "Combine requires a List<String> source")
	}
	sep := ""
	if n.Separator != nil {
		sv, err := e.evalOperand(ctx, n.Separator, ec)
		if err != nil {
			return nil, err
		}
		sep, _ = asString(sv)
	}
	parts := make([]string, 0, len(elements))
	for _, el := range elements {
		if isNullValue(el) {
			continue
		}
		s, ok := asString(el)
		if !ok {
			return nil, errInvalidOperand("", "Combine requires String elements")
		}
		parts = append(parts, s)
	}
	return value.String{Value: strings.Join(parts, sep)}, nil
}

func (e *Engine) evalSplit(ctx context.Context, n *elm.Split, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.StringToSplit, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	s, ok := asString(source)
	if !ok {
		return nil, errInvalidOperand("", "Split requires a String source")
	}
	sep := ""
	if n.Separator != nil {
		sv, err := e.evalOperand(ctx, n.Separator, ec)
		if err != nil {
			return nil, err
		}
		sep, _ = asString(sv)
	}
	var parts []string
	if sep == "" {
		parts = []string{s}
	} else {
		parts = strings.Split(s, sep)
	}
	elements := make([]value.Value, len(parts))
	for i, p := range parts {
		elements[i] = value.String{Value: p}
	}
	return value.List{ElementHint: "String", Elements: elements}, nil
}

func (e *Engine) evalSplitOnMatches(ctx context.Context, n *elm.SplitOnMatches, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.StringToSplit, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	s, ok := asString(source)
	if !ok {
		return nil, errInvalidOperand("", "SplitOnMatches requires a String source")
	}
	pv, err := e.evalOperand(ctx, n.SeparatorPattern, ec)
	if err != nil {
		return nil, err
	}
	pattern, ok := asString(pv)
	if !ok {
		return nil, errInvalidOperand("", "SplitOnMatches requires a String pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, invalidRegex(pattern, err)
	}
	parts := re.Split(s, -1)
	elements := make([]value.Value, len(parts))
	for i, p := range parts {
		elements[i] = value.String{Value: p}
	}
	return value.List{ElementHint: "String", Elements: elements}, nil
}

func (e *Engine) evalLength(ctx context.Context, n *elm.Length, ec *EvaluationContext) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	if s, ok := v.(value.String); ok {
		return value.Integer{Value: int32(len(s.Runes()))}, nil
	}
	if elements, ok := asList(v); ok {
		return value.Integer{Value: int32(len(elements))}, nil
	}
	return nil, errInvalidOperand("", "Length requires a String or List operand, got %T", v)
}

func (e *Engine) evalStringCase(ctx context.Context, n *elm.UnaryExpression, ec *EvaluationContext, upper bool) (value.Value, error) {
	v, err := e.evalOperand(ctx, n.Operand, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(v) {
		return value.Null{}, nil
	}
	s, ok := asString(v)
	if !ok {
		return nil, errInvalidOperand("", "Upper/Lower requires a String operand, got %T", v)
	}
	c := cases.Lower(language.Und)
	if upper {
		c = cases.Upper(language.Und)
	}
	return value.String{Value: c.String(s)}, nil
}

func (e *Engine) evalPositionOf(ctx context.Context, n *elm.PositionOf, ec *EvaluationContext, last bool) (value.Value, error) {
	pattern, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	source, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(pattern, source) {
		return value.Null{}, nil
	}
	ps, ok1 := asString(pattern)
	ss, ok2 := asString(source)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "PositionOf requires String operands")
	}
	sr := []rune(ss)
	pr := []rune(ps)
	idx := -1
	if last {
		for i := len(sr) - len(pr); i >= 0; i-- {
			if string(sr[i:i+len(pr)]) == ps {
				idx = i
				break
			}
		}
	} else {
		for i := 0; i+len(pr) <= len(sr); i++ {
			if string(sr[i:i+len(pr)]) == ps {
				idx = i
				break
			}
		}
	}
	return value.Integer{Value: int32(idx)}, nil
}

func (e *Engine) evalStartsEndsWith(ctx context.Context, n *elm.StartsWith, ec *EvaluationContext, starts bool) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	suffix, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(source, suffix) {
		return value.Null{}, nil
	}
	ss, ok1 := asString(source)
	ps, ok2 := asString(suffix)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "StartsWith/EndsWith requires String operands")
	}
	if starts {
		return value.Boolean{Value: strings.HasPrefix(ss, ps)}, nil
	}
	return value.Boolean{Value: strings.HasSuffix(ss, ps)}, nil
}

func (e *Engine) evalMatches(ctx context.Context, n *elm.Matches, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	pattern, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(source, pattern) {
		return value.Null{}, nil
	}
	ss, ok1 := asString(source)
	ps, ok2 := asString(pattern)
	if !ok1 || !ok2 {
		return nil, errInvalidOperand("", "Matches requires String operands")
	}
	re, err := regexp.Compile("^(?:" + ps + ")$")
	if err != nil {
		return nil, invalidRegex(ps, err)
	}
	return value.Boolean{Value: re.MatchString(ss)}, nil
}

func (e *Engine) evalSubstring(ctx context.Context, n *elm.Substring, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.StringExpr, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(source) {
		return value.Null{}, nil
	}
	s, ok := asString(source)
	if !ok {
		return nil, errInvalidOperand("", "Substring requires a String source")
	}
	startVal, err := e.evalOperand(ctx, n.StartIndex, ec)
	if err != nil {
		return nil, err
	}
	if isNullValue(startVal) {
		return value.Null{}, nil
	}
	startInt, ok := startVal.(value.Integer)
	if !ok {
		return nil, errInvalidOperand("", "Substring start index must be Integer")
	}
	runes := []rune(s)
	start := int(startInt.Value)
	if start < 0 || start > len(runes) {
		return value.Null{}, nil
	}
	end := len(runes)
	if n.Length_ != nil {
		lv, err := e.evalOperand(ctx, n.Length_, ec)
		if err != nil {
			return nil, err
		}
		if isNullValue(lv) {
			return value.Null{}, nil
		}
		li, ok := lv.(value.Integer)
		if !ok {
			return nil, errInvalidOperand("", "Substring length must be Integer")
		}
		end = start + int(li.Value)
		if end > len(runes) {
			end = len(runes)
		}
	}
	if end < start {
		return value.Null{}, nil
	}
	return value.String{Value: string(runes[start:end])}, nil
}

func (e *Engine) evalReplaceMatches(ctx context.Context, n *elm.ReplaceMatches, ec *EvaluationContext) (value.Value, error) {
	source, err := e.evalOperand(ctx, n.Operand[0], ec)
	if err != nil {
		return nil, err
	}
	pattern, err := e.evalOperand(ctx, n.Operand[1], ec)
	if err != nil {
		return nil, err
	}
	replacement, err := e.evalOperand(ctx, n.Operand[2], ec)
	if err != nil {
		return nil, err
	}
	if anyNull(source, pattern, replacement) {
		return value.Null{}, nil
	}
	ss, ok1 := asString(source)
	ps, ok2 := asString(pattern)
	rs, ok3 := asString(replacement)
	if !ok1 || !ok2 || !ok3 {
		return nil, errInvalidOperand("", "ReplaceMatches requires String operands")
	}
	re, err := regexp.Compile(ps)
	if err != nil {
		return nil, invalidRegex(ps, err)
	}
	return value.String{Value: re.ReplaceAllString(ss, rs)}, nil
}

// collapseAndLower is the shared Equivalent-String normalization: Unicode
// NFC normalize, locale-insensitive lowercase, then collapse runs of
// whitespace and trim the ends.
func collapseAndLower(s string) string {
	s = norm.NFC.String(s)
	s = cases.Lower(language.Und).String(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func invalidRegex(pattern string, cause error) error {
	return errors.Newf(errors.KindEvaluation, errors.CodeInvalidRegex, "", "invalid regular expression %q: %v", pattern, cause)
}
