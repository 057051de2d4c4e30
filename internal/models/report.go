package models

// ReportIssue categorizes what is wrong with a listing's market-value match.
type ReportIssue string

const (
	IssueWrongParallel ReportIssue = "wrong_parallel"
	IssueWrongPrice    ReportIssue = "wrong_price"
	IssueWrongYear     ReportIssue = "wrong_year"
	IssueWrongPlayer   ReportIssue = "wrong_player"
	IssueWrongSet      ReportIssue = "wrong_set"
	IssueOther         ReportIssue = "other"
)

// ValidReportIssue reports whether issue is one of the accepted categories.
func ValidReportIssue(issue ReportIssue) bool {
	switch issue {
	case IssueWrongParallel, IssueWrongPrice, IssueWrongYear,
		IssueWrongPlayer, IssueWrongSet, IssueOther:
		return true
	}
	return false
}

// ReportSubmission is a write-once report that a listing was matched to the
// wrong market value. Field names follow the report endpoint's contract.
type ReportSubmission struct {
	ListingID      string      `json:"listingId"`
	ListingURL     string      `json:"ebayUrl"`
	MarketValueURL string      `json:"scpUrl"`
	Issue          ReportIssue `json:"issue"`
	Notes          string      `json:"notes,omitempty"`
}
