package domain

// AddressStatus is the lifecycle state of a pin's reverse-geocoded address.
type AddressStatus string

const (
	AddressEmpty   AddressStatus = "empty"
	AddressLoading AddressStatus = "loading"
	AddressSuccess AddressStatus = "success"
	AddressError   AddressStatus = "error"
)

// AddressEntry holds the resolved (or pending) address for one pin.
// The session keeps exactly one entry per pin, index-aligned.
type AddressEntry struct {
	Status  AddressStatus
	Address string
	Pin     Pin
}
