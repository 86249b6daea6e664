package models

// Phase is a production step. Phases run in a fixed order.
type Phase string

const (
	PhaseDesign      Phase = "design"
	PhasePrint       Phase = "print"
	PhasePress       Phase = "press"
	PhaseCut         Phase = "cut"
	PhaseSew         Phase = "sew"
	PhaseQC          Phase = "qc"
	PhaseIronPacking Phase = "iron_packing"
)

// Production roles, one per phase
const (
	RoleDesigner = "Designer"
	RolePrinter  = "Printer"
	RolePress    = "Press"
	RoleCutter   = "Cutter"
	RoleSewer    = "Sewer"
	RoleQC       = "QC"
	RolePacker   = "Packer"
)

type phaseInfo struct {
	phase       Phase
	role        string
	displayName string
}

// phaseTable is the ordered production sequence
var phaseTable = []phaseInfo{
	{PhaseDesign, RoleDesigner, "Design"},
	{PhasePrint, RolePrinter, "Printing"},
	{PhasePress, RolePress, "Heat Press"},
	{PhaseCut, RoleCutter, "Cutting"},
	{PhaseSew, RoleSewer, "Sewing"},
	{PhaseQC, RoleQC, "Quality Control"},
	{PhaseIronPacking, RolePacker, "Ironing & Packing"},
}

// Phases returns every phase in production order
func Phases() []Phase {
	out := make([]Phase, len(phaseTable))
	for i, p := range phaseTable {
		out[i] = p.phase
	}
	return out
}

// Index returns the position of the phase in the sequence, or -1 if unknown
func (p Phase) Index() int {
	for i, info := range phaseTable {
		if info.phase == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the known phases
func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// RequiredRole is the production role an assignee needs for this phase
func (p Phase) RequiredRole() string {
	if i := p.Index(); i >= 0 {
		return phaseTable[i].role
	}
	return ""
}

// DisplayName is the customer-facing label shown on the tracking page
func (p Phase) DisplayName() string {
	if i := p.Index(); i >= 0 {
		return phaseTable[i].displayName
	}
	return string(p)
}

// Previous returns the phase that must be completed before p can start.
// The first phase has none.
func (p Phase) Previous() (Phase, bool) {
	i := p.Index()
	if i <= 0 {
		return "", false
	}
	return phaseTable[i-1].phase, true
}

// IsFirst reports whether p opens the sequence
func (p Phase) IsFirst() bool {
	return p.Index() == 0
}

// IsLast reports whether p closes the sequence
func (p Phase) IsLast() bool {
	return p.Index() == len(phaseTable)-1
}
