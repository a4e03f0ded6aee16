package symbol

import "its-hmny.dev/robinc/pkg/utils"

// Table is a single scope frame: name -> Symbol, O(1) insert and lookup.
// Insertion only ever touches this frame; it never sees parent frames.
type Table struct {
	entries map[string]Symbol
}

// NewTable returns an empty scope frame.
func NewTable() *Table {
	return &Table{entries: make(map[string]Symbol)}
}

// Insert adds symbol to this frame. It returns false without modifying the
// frame if a symbol with the same name already exists in it.
func (t *Table) Insert(sym Symbol) bool {
	if _, exists := t.entries[sym.symbolName()]; exists {
		return false
	}
	t.entries[sym.symbolName()] = sym
	return true
}

// Exists reports whether name is bound in this frame.
func (t *Table) Exists(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// TypeOf returns the type of the variable bound to name in this frame, or
// Undefined if absent or not a variable.
func (t *Table) TypeOf(name string) PrimType {
	if v, ok := t.LookupVariable(name); ok {
		return v.Type
	}
	return Undefined
}

// IsInitialized reports whether the variable bound to name in this frame is
// marked initialized; false if the name is absent or not a variable.
func (t *Table) IsInitialized(name string) bool {
	v, ok := t.LookupVariable(name)
	return ok && v.Initialized
}

// SetInitialized marks the variable bound to name in this frame as
// initialized. No-op if name is absent or not a variable.
func (t *Table) SetInitialized(name string) {
	if v, ok := t.LookupVariable(name); ok {
		v.Initialized = true
	}
}

// LookupVariable returns the VariableSymbol bound to name in this frame.
func (t *Table) LookupVariable(name string) (*VariableSymbol, bool) {
	sym, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	v, ok := sym.(*VariableSymbol)
	return v, ok
}

// LookupFunction returns the FunctionSymbol bound to name in this frame.
func (t *Table) LookupFunction(name string) (*FunctionSymbol, bool) {
	sym, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	f, ok := sym.(*FunctionSymbol)
	return f, ok
}

// LookupSymbol returns whatever Symbol is bound to name in this frame,
// regardless of variant.
func (t *Table) LookupSymbol(name string) (Symbol, bool) {
	sym, ok := t.entries[name]
	return sym, ok
}

// ParameterTypes returns the flattened (type, dim) signature of the function
// bound to name in this frame.
func (t *Table) ParameterTypes(name string) ([]Param, bool) {
	f, ok := t.LookupFunction(name)
	if !ok {
		return nil, false
	}
	return f.Parameters, true
}

// RequiredParameters returns only the contiguous non-defaulted prefix of the
// function's parameter list.
func (t *Table) RequiredParameters(name string) ([]Param, bool) {
	f, ok := t.LookupFunction(name)
	if !ok {
		return nil, false
	}
	return f.Parameters[:f.RequiredCount], true
}

// Stack is a LIFO stack of scope frames: global scope at the bottom, one
// frame per function/loop body/branch/for-header pushed on top of it. A
// lookup walks top-down so inner scopes shadow outer ones.
type Stack struct {
	frames utils.Stack[*Table]
}

// NewStack returns a scope stack with a single global frame.
func NewStack() *Stack {
	s := &Stack{}
	s.frames.Push(NewTable())
	return s
}

// Push opens a new scope frame on top of the stack.
func (s *Stack) Push() *Table {
	t := NewTable()
	s.frames.Push(t)
	return t
}

// Pop closes the top scope frame. Popping the last (global) frame is a
// programmer error and panics rather than returning a zero value.
func (s *Stack) Pop() {
	if s.frames.Count() <= 1 {
		panic("symbol.Stack: cannot pop the global scope")
	}
	if _, err := s.frames.Pop(); err != nil {
		panic(err)
	}
}

// Top returns the current (innermost) frame.
func (s *Stack) Top() *Table {
	top, err := s.frames.Top()
	if err != nil {
		panic(err)
	}
	return top
}

// Global returns the bottom (outermost) frame.
func (s *Stack) Global() *Table {
	var global *Table
	for frame := range s.frames.Iterator() {
		global = frame
	}
	return global
}

// Resolve walks the stack top-down and returns the first symbol bound to
// name, along with the frame it was found in.
func (s *Stack) Resolve(name string) (Symbol, *Table, bool) {
	for frame := range s.frames.Iterator() {
		if sym, ok := frame.LookupSymbol(name); ok {
			return sym, frame, true
		}
	}
	return nil, nil, false
}

// ResolveVariable is Resolve narrowed to VariableSymbol.
func (s *Stack) ResolveVariable(name string) (*VariableSymbol, *Table, bool) {
	for frame := range s.frames.Iterator() {
		if v, ok := frame.LookupVariable(name); ok {
			return v, frame, true
		}
	}
	return nil, nil, false
}

// ResolveFunction looks a function up directly in the global scope, where
// every function (and the program pseudo-function) is inserted.
func (s *Stack) ResolveFunction(name string) (*FunctionSymbol, bool) {
	return s.Global().LookupFunction(name)
}
