package llvm

import "fmt"

// PassManager owns a legacy module pass manager.
type PassManager struct {
	h   *Owned[PassManagerRef]
	cat PassManagerCatalog
}

// NewPassManager creates an empty pass manager.
func NewPassManager(cat PassManagerCatalog) PassManager {
	raw := cat.CreatePassManager()
	return PassManager{h: Acquire(raw, cat.DisposePassManager), cat: cat}
}

// Share returns an independent reference to the same pass manager.
func (pm PassManager) Share() PassManager {
	return PassManager{h: pm.h.Share(), cat: pm.cat}
}

// Release drops this reference.
func (pm PassManager) Release() { pm.h.Release() }

// Raw returns the backend handle.
func (pm PassManager) Raw() PassManagerRef { return pm.h.Raw() }

// Valid reports whether pm holds a live reference.
func (pm PassManager) Valid() bool { return pm.h != nil && !pm.h.Released() }

// AddPass appends a named pass.
func (pm PassManager) AddPass(name string) error {
	if !pm.cat.AddPass(pm.Raw(), name) {
		return fmt.Errorf("unknown pass %q", name)
	}
	return nil
}

// AddPipeline appends passes in order and stops at the first unknown one.
func (pm PassManager) AddPipeline(names []string) error {
	for _, name := range names {
		if err := pm.AddPass(name); err != nil {
			return err
		}
	}
	return nil
}

// AddTargetData makes td available to the passes.
func (pm PassManager) AddTargetData(td TargetData) {
	pm.cat.AddTargetData(td.Raw(), pm.Raw())
}

// Run executes the pipeline over m and reports whether m was modified.
func (pm PassManager) Run(m ModuleRef) bool {
	return pm.cat.RunPassManager(pm.Raw(), m)
}
