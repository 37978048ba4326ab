package enums

// MatchSource records which join path paired a quotation with an inventory row.
type MatchSource string

const (
	MatchSourceUPCMap   MatchSource = "upc_map"
	MatchSourceBinding  MatchSource = "binding"
	MatchSourceUPCField MatchSource = "upc_field"
	MatchSourceNone     MatchSource = "none"
)

// String implements fmt.Stringer.
func (m MatchSource) String() string {
	return string(m)
}
