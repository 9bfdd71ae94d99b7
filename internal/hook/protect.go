package hook

// Protector toggles the protection of the page containing an address so
// that entry bytes can be rewritten and then made executable again.
type Protector interface {
	MakeWritable(addr Address) error
	MakeExecutable(addr Address) error
}

// pageOf returns the start of the page containing addr.
func pageOf(addr Address, pageSize int) Address {
	return addr &^ Address(pageSize-1)
}
