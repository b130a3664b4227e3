package http

import (
	"time"

	"github.com/sagarc03/vana"
)

// ObjectRequest is the JSON body for object create and update.
// DirectoryPath is only meaningful on create, for opaque-URI objects or
// together with ForceLocation.
type ObjectRequest struct {
	ObjectName        string   `json:"objectName"`
	OwnerID           string   `json:"ownerId"`
	StoragePlatform   string   `json:"storagePlatform"`
	SizeEstimateBytes *int64   `json:"sizeEstimateBytes,omitempty"`
	Readers           []string `json:"readers"`
	Writers           []string `json:"writers"`
	ForceLocation     bool     `json:"forceLocation,omitempty"`
	DirectoryPath     string   `json:"directoryPath,omitempty"`
}

// ObjectResponse is the JSON rendering of an object. DirectoryPath carries
// the location only for opaque-URI objects; generated backend locations are
// never exposed.
type ObjectResponse struct {
	ObjectID          string     `json:"objectId"`
	ObjectName        string     `json:"objectName"`
	OwnerID           string     `json:"ownerId"`
	StoragePlatform   string     `json:"storagePlatform"`
	SizeEstimateBytes int64      `json:"sizeEstimateBytes"`
	Readers           []string   `json:"readers"`
	Writers           []string   `json:"writers"`
	DirectoryPath     string     `json:"directoryPath,omitempty"`
	CreatedDate       time.Time  `json:"createdDate"`
	ModifiedDate      time.Time  `json:"modifiedDate"`
	ResolvedDate      *time.Time `json:"resolvedDate,omitempty"`
}

func toObjectResponse(o vana.Object) ObjectResponse {
	resp := ObjectResponse{
		ObjectID:          o.ID.String(),
		ObjectName:        o.Name,
		OwnerID:           o.OwnerID,
		StoragePlatform:   string(o.Platform),
		SizeEstimateBytes: o.SizeEstimateBytes,
		Readers:           o.Readers,
		Writers:           o.Writers,
		CreatedDate:       o.CreatedAt,
		ModifiedDate:      o.ModifiedAt,
		ResolvedDate:      o.ResolvedAt,
	}
	if o.Platform == vana.PlatformOpaqueURI {
		resp.DirectoryPath = o.Location
	}
	return resp
}

// ResolveRequest is the JSON body for resolve-for-transfer.
type ResolveRequest struct {
	ValidityPeriodSeconds int    `json:"validityPeriodSeconds"`
	HTTPMethod            string `json:"httpMethod"`
	ContentType           string `json:"contentType,omitempty"`
	ContentMD5Hex         string `json:"contentMD5Hex,omitempty"`
}

// ResolveResponse echoes the validity window and content constraints bound
// into the signed URL.
type ResolveResponse struct {
	ObjectURL             string `json:"objectUrl"`
	ValidityPeriodSeconds int    `json:"validityPeriodSeconds"`
	ContentType           string `json:"contentType,omitempty"`
	ContentMD5Hex         string `json:"contentMD5Hex,omitempty"`
}

// CopyRequest is the JSON body for resolve-for-copy.
type CopyRequest struct {
	ValidityPeriodSeconds int    `json:"validityPeriodSeconds"`
	SourceLocation        string `json:"sourceLocation"`
}

// GroupRequest is the JSON body for group create and update.
type GroupRequest struct {
	GroupName string   `json:"groupName"`
	OwnerID   string   `json:"ownerId"`
	Kind      string   `json:"kind,omitempty"`
	Readers   []string `json:"readers"`
	Writers   []string `json:"writers"`
}

// GroupResponse is the JSON rendering of a group.
type GroupResponse struct {
	GroupID      string    `json:"groupId"`
	GroupName    string    `json:"groupName"`
	OwnerID      string    `json:"ownerId"`
	Kind         string    `json:"kind"`
	Directory    string    `json:"directory,omitempty"`
	Readers      []string  `json:"readers"`
	Writers      []string  `json:"writers"`
	CreatedDate  time.Time `json:"createdDate"`
	ModifiedDate time.Time `json:"modifiedDate"`
}

func toGroupResponse(g vana.Group) GroupResponse {
	return GroupResponse{
		GroupID:      g.ID.String(),
		GroupName:    g.Name,
		OwnerID:      g.OwnerID,
		Kind:         string(g.Kind),
		Directory:    g.Directory,
		Readers:      g.Readers,
		Writers:      g.Writers,
		CreatedDate:  g.CreatedAt,
		ModifiedDate: g.ModifiedAt,
	}
}
