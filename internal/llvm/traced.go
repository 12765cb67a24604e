package llvm

import (
	"llbridge/internal/llvm/vocab"
	"llbridge/internal/trace"
)

// Traced wraps cat so resource lifetimes are reported to tr at
// ScopeResource and structural queries at ScopeCall. With a disabled
// tracer cat is returned unchanged.
func Traced(cat Catalog, tr trace.Tracer) Catalog {
	if tr == nil || !tr.Enabled() {
		return cat
	}
	return &tracedCatalog{Catalog: cat, tr: tr}
}

type tracedCatalog struct {
	Catalog
	tr trace.Tracer
}

func (c *tracedCatalog) resource(name string, h interface{ String() string }) {
	trace.Point(c.tr, trace.ScopeResource, name, h.String())
}

func (c *tracedCatalog) call(name string, h interface{ String() string }) {
	trace.Point(c.tr, trace.ScopeCall, name, h.String())
}

func (c *tracedCatalog) CreateTargetData(layout string) TargetDataRef {
	td := c.Catalog.CreateTargetData(layout)
	c.resource("create:targetdata", td)
	return td
}

func (c *tracedCatalog) DisposeTargetData(td TargetDataRef) {
	c.resource("dispose:targetdata", td)
	c.Catalog.DisposeTargetData(td)
}

func (c *tracedCatalog) CreatePassManager() PassManagerRef {
	pm := c.Catalog.CreatePassManager()
	c.resource("create:passmanager", pm)
	return pm
}

func (c *tracedCatalog) DisposePassManager(pm PassManagerRef) {
	c.resource("dispose:passmanager", pm)
	c.Catalog.DisposePassManager(pm)
}

func (c *tracedCatalog) CreateObjectFile(buf MemoryBufferRef) ObjectFileRef {
	obj := c.Catalog.CreateObjectFile(buf)
	if obj.IsNil() {
		trace.Point(c.tr, trace.ScopeResource, "reject:objectfile", buf.String())
		return obj
	}
	c.resource("create:objectfile", obj)
	return obj
}

func (c *tracedCatalog) DisposeObjectFile(obj ObjectFileRef) {
	c.resource("dispose:objectfile", obj)
	c.Catalog.DisposeObjectFile(obj)
}

func (c *tracedCatalog) GetSections(obj ObjectFileRef) SectionIteratorRef {
	si := c.Catalog.GetSections(obj)
	c.resource("create:sections", si)
	return si
}

func (c *tracedCatalog) DisposeSectionIterator(si SectionIteratorRef) {
	c.resource("dispose:sections", si)
	c.Catalog.DisposeSectionIterator(si)
}

func (c *tracedCatalog) TypeKind(ty TypeRef) vocab.TypeKind {
	kind := c.Catalog.TypeKind(ty)
	c.call("TypeKind:"+kind.String(), ty)
	return kind
}

func (c *tracedCatalog) RunPassManager(pm PassManagerRef, m ModuleRef) bool {
	c.call("RunPassManager", pm)
	return c.Catalog.RunPassManager(pm, m)
}
