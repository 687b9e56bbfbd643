package enums

// PaymentType selects how a checkout settles.
type PaymentType string

const (
	// PaymentTypeTransfer settles through the external gateway redirect.
	PaymentTypeTransfer PaymentType = "transfer"
	// PaymentTypeCOD settles on delivery, no gateway involved.
	PaymentTypeCOD PaymentType = "cod"
)

// RequiresGateway reports whether checkout must produce a gateway redirect URL.
func (t PaymentType) RequiresGateway() bool {
	return t == PaymentTypeTransfer
}

func (t PaymentType) Valid() bool {
	return t == PaymentTypeTransfer || t == PaymentTypeCOD
}
