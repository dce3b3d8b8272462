package xsh

// Exec normalizes, splits and evaluates a source expression synchronously
// against scope, the entry point used when async is false. It is also how
// the converter re-enters for parenthesized groups and bare command
// expressions.
func (e *Engine) Exec(source string, scope *Scope) (Value, error) {
	normalized := Normalize(source, scope)
	tree := SplitCommand(normalized, 0)
	return e.evalNode(tree, scope)
}

// ExecAsync is Exec's deferred dual: the same tree, evaluated with
// suspension allowed at every fold.
func (e *Engine) ExecAsync(source string, scope *Scope) *Deferred {
	normalized := Normalize(source, scope)
	tree := SplitCommand(normalized, 0)
	return Go(func() (Value, error) {
		return e.evalNode(tree, scope)
	})
}

// evalNode folds a subcommand tree bottom-up. Internal nodes dispatch on
// their tagging operator; leaves go through the converter.
func (e *Engine) evalNode(n *SubNode, scope *Scope) (Value, error) {
	if n.IsLeaf {
		return e.Convert(n.Leaf, scope)
	}
	switch n.Operator {
	case ";":
		return e.foldSequence(n.Children, scope)
	case "||":
		return e.foldOr(n.Children, scope)
	case "&&":
		return e.foldAnd(n.Children, scope)
	case "??":
		return e.foldNullish(n.Children, scope)
	case "|":
		return e.foldPipe(n.Children, scope)
	case ">>":
		return e.foldAssign(n.Children, scope)
	case " ":
		return e.foldParam(n.Children, scope)
	default:
		return Undefined(), &ParameterTypeInvalidError{Helper: "evalNode", Parameter: "operator:" + n.Operator}
	}
}

func (e *Engine) foldSequence(children []*SubNode, scope *Scope) (Value, error) {
	result := Undefined()
	for _, c := range children {
		v, err := e.evalNode(c, scope)
		if err != nil {
			return Undefined(), err
		}
		if !v.IsUndefined() {
			result = v
		}
	}
	return result, nil
}

func (e *Engine) foldOr(children []*SubNode, scope *Scope) (Value, error) {
	var last Value
	for _, c := range children {
		v, err := e.evalNode(c, scope)
		if err != nil {
			return Undefined(), err
		}
		last = v
		resolved, err := forceAwait(v)
		if err != nil {
			return Undefined(), err
		}
		if resolved.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func (e *Engine) foldAnd(children []*SubNode, scope *Scope) (Value, error) {
	var last Value
	for _, c := range children {
		v, err := e.evalNode(c, scope)
		if err != nil {
			return Undefined(), err
		}
		last = v
		resolved, err := forceAwait(v)
		if err != nil {
			return Undefined(), err
		}
		if !resolved.Truthy() {
			return v, nil
		}
	}
	return last, nil
}

func (e *Engine) foldNullish(children []*SubNode, scope *Scope) (Value, error) {
	var last Value
	for _, c := range children {
		v, err := e.evalNode(c, scope)
		if err != nil {
			return Undefined(), err
		}
		last = v
		resolved, err := forceAwait(v)
		if err != nil {
			return Undefined(), err
		}
		if !resolved.IsNullish() {
			return v, nil
		}
	}
	return last, nil
}

// foldPipe executes child 0, then for each subsequent child saves
// scope.context, sets it to the running result, evaluates the child, and
// restores it.
func (e *Engine) foldPipe(children []*SubNode, scope *Scope) (Value, error) {
	result, err := e.evalNode(children[0], scope)
	if err != nil {
		return Undefined(), err
	}
	for _, c := range children[1:] {
		resolved, err := forceAwait(result)
		if err != nil {
			return Undefined(), err
		}
		old, hadOld := scope.local("context")
		scope.setLocal("context", resolved)
		result, err = e.evalNode(c, scope)
		if hadOld {
			scope.setLocal("context", old)
		} else {
			scope.setLocal("context", Undefined())
		}
		if err != nil {
			return Undefined(), err
		}
	}
	return result, nil
}

// foldAssign executes child 0 to obtain r, then each subsequent child
// yields a target name and r is assigned there via setVar; returns r.
func (e *Engine) foldAssign(children []*SubNode, scope *Scope) (Value, error) {
	result, err := e.evalNode(children[0], scope)
	if err != nil {
		return Undefined(), err
	}
	resolved, err := forceAwait(result)
	if err != nil {
		return Undefined(), err
	}
	for _, c := range children[1:] {
		nameVal, err := e.evalNode(c, scope)
		if err != nil {
			return Undefined(), err
		}
		nameResolved, err := forceAwait(nameVal)
		if err != nil {
			return Undefined(), err
		}
		if err := scope.SetVar(SplitPath(nameResolved.String()), resolved); err != nil {
			return Undefined(), err
		}
	}
	return result, nil
}

// foldParam implements the ␠ (juxtaposition) rule: convert each child as
// a value; if the first is callable, invoke it with the rest as
// arguments; else if more than one child, return a sequence; else the
// single element. Per the Open Question decision recorded in SPEC_FULL.md
// §9: a deferred child here is rejected explicitly rather than silently
// passed through, since the param operator is where callables are invoked
// and a deferred receiver cannot be type-checked as callable. ExecAsync
// evaluates the same tree, so the rejection applies there as well.
func (e *Engine) foldParam(children []*SubNode, scope *Scope) (Value, error) {
	// A leaf head naming a registered command is the "name arg arg" shape:
	// dispatch it directly rather than running it through Convert first —
	// Convert's own rung 11 auto-invokes a bare command name with zero
	// arguments, which is only correct when that name appears alone, not
	// as the head of an application. A bare-word head that names no
	// registered command is an attempted call to an undefined command
	// (ExecFn's own PropertyNotFound case), not a literal to fold into a
	// sequence — that distinguishes "totallyUnknownCmd 1" (an error) from
	// "1 2 3" (an implicit sequence of literals).
	if len(children) > 1 && children[0].IsLeaf && looksLikeBareWord(children[0].Leaf) {
		cmd, ok := e.commands.Lookup(children[0].Leaf)
		if !ok {
			return Undefined(), &PropertyNotFoundError{
				Property:   children[0].Leaf,
				Context:    "command",
				Suggestion: e.commands.suggest(children[0].Leaf),
			}
		}
		args, err := e.convertChildren(children[1:], scope)
		if err != nil {
			return Undefined(), err
		}
		return e.dispatch(cmd, args, scope)
	}

	values, err := e.convertChildren(children, scope)
	if err != nil {
		return Undefined(), err
	}
	if len(values) == 0 {
		return Undefined(), nil
	}
	head := values[0]
	if head.IsCallable() {
		return e.invokeFunc(head.Func(), values[1:], scope)
	}
	if len(values) > 1 {
		return SeqOf(values), nil
	}
	return values[0], nil
}

// convertChildren evaluates each child to a value, rejecting a deferred
// result per the Open Question decision recorded in SPEC_FULL.md §9.
func (e *Engine) convertChildren(children []*SubNode, scope *Scope) ([]Value, error) {
	values := make([]Value, 0, len(children))
	for _, c := range children {
		v, err := e.evalNode(c, scope)
		if err != nil {
			return nil, err
		}
		if v.IsDeferred() {
			return nil, &PropertyTypeMismatchError{
				Operator: " ",
				Expected: "resolved value",
				Got:      "deferred",
			}
		}
		values = append(values, v)
	}
	return values, nil
}

// invokeFunc calls a FuncValue, threading its bound receiver (if any) as
// the first argument — the bound-method variant of this-binding.
func (e *Engine) invokeFunc(fn *FuncValue, args []Value, scope *Scope) (Value, error) {
	if fn.Receiver != nil {
		args = append([]Value{*fn.Receiver}, args...)
	}
	if fn.Native != nil {
		return fn.Native(args, scope)
	}
	return e.ExecFn(fn.Name, args, scope, nil)
}

// ForceEval resolves a value one step further: a string re-parses, a
// callable invokes with no arguments, a deferred value awaits then
// re-applies, anything else passes through unchanged.
func (e *Engine) ForceEval(v Value, scope *Scope) (Value, error) {
	switch v.Kind() {
	case KindString:
		return e.Exec(v.Str(), scope)
	case KindFunc:
		return e.invokeFunc(v.Func(), nil, scope)
	case KindDeferred:
		resolved, err := v.Deferred().Await()
		if err != nil {
			return Undefined(), err
		}
		return e.ForceEval(resolved, scope)
	default:
		return v, nil
	}
}
