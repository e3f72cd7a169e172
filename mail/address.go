package mail

import (
	"net/mail"
	"strings"
)

// AddressError reports an address that couldn't be parsed.
type AddressError struct {
	Input string
	Err   error
}

func (e *AddressError) Error() string {
	return `bad address "` + e.Input + `": ` + e.Err.Error()
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// Address is an email address with an optional display name.
type Address struct {
	Name  string
	Email string
}

// ParseAddress parses a single RFC 5322 address such as
// "Homer Simpson <homer@example.com>" or "homer@example.com".
func ParseAddress(s string) (*Address, error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return nil, &AddressError{Input: s, Err: err}
	}
	return &Address{
		Name:  a.Name,
		Email: a.Address,
	}, nil
}

// ParseAddressList parses a comma-separated list of addresses.
func ParseAddressList(s string) ([]*Address, error) {
	as, err := mail.ParseAddressList(s)
	if err != nil {
		return nil, &AddressError{Input: s, Err: err}
	}
	acc := make([]*Address, 0, len(as))
	for _, a := range as {
		acc = append(acc, &Address{
			Name:  a.Name,
			Email: a.Address,
		})
	}
	return acc, nil
}

// String renders the address for a header, encoding the name if
// necessary.
func (a *Address) String() string {
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// Domain returns the part of the address after the '@'.
func (a *Address) Domain() string {
	if i := strings.LastIndexByte(a.Email, '@'); i >= 0 {
		return a.Email[i+1:]
	}
	return ""
}

func joinAddresses(as []*Address) string {
	ss := make([]string, 0, len(as))
	for _, a := range as {
		ss = append(ss, a.String())
	}
	return strings.Join(ss, ", ")
}
