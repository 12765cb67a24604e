package inproc

import (
	"fmt"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

type valueInfo struct {
	ty      llvm.TypeRef
	name    string
	linkage vocab.Linkage
	module  llvm.ModuleRef
}

type module struct {
	name    string
	globals []llvm.ValueRef
}

// NewModule creates an empty module. Modules belong to the context and
// are not disposed individually.
func (c *Catalog) NewModule(name string) llvm.ModuleRef {
	m := llvm.ModuleRef(c.alloc())
	c.modules[m] = &module{name: name}
	return m
}

// ModuleName returns the identifier given to NewModule.
func (c *Catalog) ModuleName(m llvm.ModuleRef) string { return c.module(m).name }

func (c *Catalog) module(m llvm.ModuleRef) *module {
	mod, ok := c.modules[m]
	if !ok {
		panic(fmt.Sprintf("inproc: invalid module %#x", uintptr(m)))
	}
	return mod
}

// AddGlobal declares a global variable of type ty in m.
func (c *Catalog) AddGlobal(m llvm.ModuleRef, name string, ty llvm.TypeRef, linkage vocab.Linkage) llvm.ValueRef {
	mod := c.module(m)
	c.types.check(ty)
	v := c.newValue(valueInfo{ty: ty, name: name, linkage: linkage, module: m})
	mod.globals = append(mod.globals, v)
	return v
}

// Globals lists the globals of m in declaration order.
func (c *Catalog) Globals(m llvm.ModuleRef) []llvm.ValueRef {
	return append([]llvm.ValueRef(nil), c.module(m).globals...)
}

// ValueName returns the name of a global or "" for constants.
func (c *Catalog) ValueName(v llvm.ValueRef) string { return c.value(v).name }

// ConstNull returns the all-zero constant of ty.
func (c *Catalog) ConstNull(ty llvm.TypeRef) llvm.ValueRef {
	c.types.check(ty)
	return c.newValue(valueInfo{ty: ty})
}

func (c *Catalog) newValue(v valueInfo) llvm.ValueRef {
	c.values = append(c.values, v)
	return llvm.ValueRef(len(c.values) - 1)
}

func (c *Catalog) value(v llvm.ValueRef) *valueInfo {
	if v == 0 || uint64(v) >= uint64(len(c.values)) {
		panic(fmt.Sprintf("inproc: invalid %s", v))
	}
	return &c.values[v]
}

func (c *Catalog) TypeOf(v llvm.ValueRef) llvm.TypeRef { return c.value(v).ty }
