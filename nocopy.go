package epio

// noCopy is embedded in types whose values own a descriptor or a
// queue of parked tasks. go vet's copylocks check reports copies of
// any value with Lock and Unlock methods.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
