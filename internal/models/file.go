package models

import "time"

// FileRecord is the metadata entry for one stored file. Name is the identity
// key within a store: uploading a file under an existing name replaces that
// record in place (latest-wins) rather than appending a second entry.
type FileRecord struct {
	Name         string    `bson:"name" json:"name"`
	Size         int64     `bson:"size" json:"size"`
	LastModified time.Time `bson:"last_modified" json:"last_modified"`
	VersionID    string    `bson:"version_id,omitempty" json:"version_id,omitempty"`
	Owner        string    `bson:"owner,omitempty" json:"-"`
}
