package generator

// OperationChooser draws named operations according to a percentage weight
// table. The table is expanded into a flat sequence holding one slot per
// weight point, and each draw indexes that sequence uniformly. Selection is
// therefore exactly proportional, with no floating point drift, at the cost
// of O(total weight) memory - fine for weights that sum near 100.
type OperationChooser struct {
	slots []string
	total int
}

func NewOperationChooser() *OperationChooser {
	return &OperationChooser{
		slots: make([]string, 0, 100),
	}
}

// AddOperation appends weight slots for the named operation.
func (self *OperationChooser) AddOperation(name string, weight int) {
	for i := 0; i < weight; i++ {
		self.slots = append(self.slots, name)
	}
	self.total += weight
}

// Total returns the summed weight of all registered operations.
func (self *OperationChooser) Total() int {
	return self.total
}

// Next returns the name of the operation to execute, drawn from rs.
// The chooser must hold at least one slot.
func (self *OperationChooser) Next(rs *RandomStream) string {
	return self.slots[rs.IntBetween(0, len(self.slots)-1)]
}
