package dto

// RepositoryResponse describes one configured repository.
type RepositoryResponse struct {
	Key         string   `json:"key"`
	Protocol    string   `json:"protocol"`
	Endpoint    string   `json:"endpoint"`
	Archive     string   `json:"archive"`
	Compression string   `json:"compression"`
	Checksums   []string `json:"checksums,omitempty"`
	Spec        string   `json:"spec,omitempty"`
}

// RepositoriesResponse lists repositories sorted by key.
type RepositoriesResponse struct {
	Repositories []RepositoryResponse `json:"repositories"`
}
