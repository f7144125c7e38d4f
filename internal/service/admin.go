package service

// AdminGate authorizes privileged operations against the single statically
// configured operator identity. Every operator-only code path checks this
// predicate before doing anything else.
type AdminGate struct {
	operatorID int64
}

// NewAdminGate creates an admin gate for the given operator user ID.
func NewAdminGate(operatorID int64) *AdminGate {
	return &AdminGate{operatorID: operatorID}
}

// IsOperator reports whether userID is the configured operator.
func (g *AdminGate) IsOperator(userID int64) bool {
	return g.operatorID != 0 && userID == g.operatorID
}

// OperatorID returns the configured operator user ID.
func (g *AdminGate) OperatorID() int64 {
	return g.operatorID
}
