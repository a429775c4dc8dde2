package types

// Image is one unit of work for sidecar generation. It is owned by the
// caller and never mutated by the engine.
type Image struct {
	Path       string   `json:"path"`
	Tags       []string `json:"tags"`
	HasSidecar bool     `json:"has_sidecar"`
}

// FaceRegion holds the face-region fields exiftool reports for an image.
// Fields are filled in incrementally as matching output lines are seen,
// so any of them may be empty.
type FaceRegion struct {
	Name        string `json:"name"`
	Rectangle   string `json:"rectangle,omitempty"`
	AreaX       string `json:"area_x,omitempty"`
	AreaY       string `json:"area_y,omitempty"`
	AreaW       string `json:"area_w,omitempty"`
	AreaH       string `json:"area_h,omitempty"`
	AppliedW    string `json:"applied_w,omitempty"`
	AppliedH    string `json:"applied_h,omitempty"`
	AppliedUnit string `json:"applied_unit,omitempty"`
}

// ExistingMetadata is the structured view of an image's embedded metadata,
// built fresh on every read and never persisted.
type ExistingMetadata struct {
	Tags                 []string     `json:"tags"`
	HierarchicalSubjects []string     `json:"hierarchical_subjects"`
	Faces                []string     `json:"faces"`
	FaceRegions          []FaceRegion `json:"face_regions"`
	GPSPosition          string       `json:"gps_position,omitempty"`
	// Fields maps every reported metadata key to its value, under both the
	// group-qualified key ("[ExifIFD] ISO") and the bare key ("ISO").
	Fields map[string]string `json:"fields"`
}

// Outcome is the per-image result of a generation unit.
type Outcome struct {
	Image   Image `json:"image"`
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

// Summary aggregates a whole batch run.
type Summary struct {
	Processed int  `json:"processed"`
	Errors    int  `json:"errors"`
	Cancelled bool `json:"cancelled"`
}
