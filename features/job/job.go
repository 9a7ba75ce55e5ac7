package job

import (
	"encoding/json"
	"time"
)

// Keys the store owns. A completion that sets them has them removed before
// validation.
var managedKeys = []string{"_id", "id", "createdAt", "updatedAt", "__v"}

var coreKeys = []string{"title", "company", "description", "slug"}

// JobPosting is a stored job record. Fields holds every schema-declared key
// besides the core ones; it is persisted as JSONB and flattened into the JSON
// representation.
type JobPosting struct {
	ID          string
	Title       string
	Company     string
	Description string
	Slug        string
	Fields      map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FromRecord splits a validated record into core columns and extra fields.
func FromRecord(record map[string]any) *JobPosting {
	j := &JobPosting{Fields: make(map[string]any, len(record))}
	for k, v := range record {
		switch k {
		case "title":
			j.Title, _ = v.(string)
		case "company":
			j.Company, _ = v.(string)
		case "description":
			j.Description, _ = v.(string)
		case "slug":
			j.Slug, _ = v.(string)
		default:
			j.Fields[k] = v
		}
	}
	return j
}

func (j JobPosting) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(j.Fields)+len(coreKeys)+3)
	for k, v := range j.Fields {
		out[k] = v
	}
	out["_id"] = j.ID
	out["title"] = j.Title
	out["company"] = j.Company
	out["description"] = j.Description
	out["slug"] = j.Slug
	out["createdAt"] = j.CreatedAt
	out["updatedAt"] = j.UpdatedAt
	return json.Marshal(out)
}

func stripManaged(record map[string]any) {
	for _, k := range managedKeys {
		delete(record, k)
	}
}
