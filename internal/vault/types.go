package vault

// Endpoint is one candidate origin API server from the discovery document
// (or the hardcoded fallback list). Lower priority values are probed first.
type Endpoint struct {
	URL      string `json:"url"`
	Priority int    `json:"priority"`
	Label    string `json:"label"`
}

// discoveryDocument mirrors the JSON served at the discovery URL.
type discoveryDocument struct {
	Version   string     `json:"version"`
	Updated   string     `json:"updated"`
	Endpoints []Endpoint `json:"endpoints"`
}

// CollectionType distinguishes the two kinds of remote collections.
// The value doubles as the API route segment (/groups, /purchases).
type CollectionType string

const (
	CollectionGroup    CollectionType = "groups"
	CollectionPurchase CollectionType = "purchases"
)

// Collection is a named, ID-addressable grouping of files. Read-only,
// fetched fresh per run.
type Collection struct {
	ID   int64
	Name string
	Type CollectionType
}

// FileRecord describes one remote file as listed within a collection.
// UUIDFilename is the stable remote identity used for authenticated
// downloads; DisplayName is an untrusted human label; CloudShareLink, when
// present, is an unauthenticated direct mirror URL. CreatedAt is a naive
// "YYYY-MM-DD HH:MM:SS" timestamp the server emits without a zone; it is
// treated as UTC throughout.
type FileRecord struct {
	UUIDFilename   string `json:"uuid_filename"`
	DisplayName    string `json:"display_name"`
	CreatedAt      string `json:"created_at"`
	CloudShareLink string `json:"cloud_share_link"`
	Size           *int64 `json:"size"`
}

// groupResponse mirrors one entry of the GET /groups response.
type groupResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// purchaseResponse mirrors one entry of the GET /purchases response.
// Purchases carry product_name where groups carry name.
type purchaseResponse struct {
	ID          int64  `json:"id"`
	ProductName string `json:"product_name"`
}

type groupsListResponse struct {
	Groups []groupResponse `json:"groups"`
}

type purchasesListResponse struct {
	Purchases []purchaseResponse `json:"purchases"`
}

type filesListResponse struct {
	Files []FileRecord `json:"files"`
}
