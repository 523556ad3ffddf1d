package domain

// Alert is the composed internal notification for one issue.
type Alert struct {
	// Summary is the one-line headline (entity, issue phrase, location).
	Summary string
	// CoordinatorID is the Slack member to mention, empty for no mention.
	CoordinatorID string
	// Region labels the origin board's shipping region.
	Region string
	// Details are the labelled detail lines shown under the summary.
	Details []Detail
}

// Detail is a single labelled line in an alert's details block.
type Detail struct {
	// Label names the detail (e.g., "Carrier", "Severity").
	Label string
	// Value is the detail content.
	Value string
}

// Contact is a customer contact resolved from the CRM.
type Contact struct {
	// Email is the contact address.
	Email string `json:"email"`
	// FirstName is the contact's first name.
	FirstName string `json:"firstname"`
	// LastName is the contact's last name.
	LastName string `json:"lastname"`
	// Company is the contact's company name.
	Company string `json:"company"`
}

// Mail is an outbound customer notification.
type Mail struct {
	// To is the recipient address.
	To string
	// Subject is the mail subject line.
	Subject string
	// Body is the plain-text mail body.
	Body string
}
