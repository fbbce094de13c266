package dto

// ClientConfigResponse is the public configuration the front-end needs before sign-in.
type ClientConfigResponse struct {
	Issuer          string          `json:"issuer,omitempty"`
	DisplayTimezone string          `json:"displayTimezone"`
	MaxImages       int             `json:"maxImages"`
	MaxImageBytes   int64           `json:"maxImageBytes"`
	ReportJobs      bool            `json:"reportJobs"`
	Catalog         CatalogResponse `json:"catalog"`
}
