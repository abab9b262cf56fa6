package entity

// EC2Instance is one instance row for the inventory listing.
type EC2Instance struct {
	InstanceID       string `json:"instance_id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	State            string `json:"state"`
	AvailabilityZone string `json:"availability_zone"`
	Launched         string `json:"launched,omitempty"`
}

// SavingsPlan is one Savings Plan commitment for the account.
type SavingsPlan struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	TermYears   int    `json:"term_years"`
	State       string `json:"state"`
	Region      string `json:"region"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Payment     string `json:"payment"`
	Description string `json:"description,omitempty"`
}

// EC2ListResult is the outcome of the EC2 inventory check.
type EC2ListResult struct {
	ResultMeta
	Region       string        `json:"region"`
	Total        int           `json:"total"`
	Running      int           `json:"running"`
	Stopped      int           `json:"stopped"`
	Instances    []EC2Instance `json:"instances"`
	SavingsPlans []SavingsPlan `json:"savings_plans"`
}
