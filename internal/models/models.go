package models

// Session is the persisted form of a studio session. It holds rendering
// parameters only; pixels are re-decoded from each member's file on restore.
type Session struct {
	Members []Member `json:"members" yaml:"members"`
	// Current is the file name of the current artwork, or nil for an empty session
	Current *string `json:"current" yaml:"current"`
}

// Member is one artwork's saved parameters
type Member struct {
	FileName     string   `json:"file_name" yaml:"file_name"`
	Alias        *string  `json:"alias" yaml:"alias"`
	TargetWidth  *int     `json:"target_width" yaml:"target_width"`
	TargetHeight *int     `json:"target_height" yaml:"target_height"`
	Brightness   *float64 `json:"brightness" yaml:"brightness"`
	Contrast     *float64 `json:"contrast" yaml:"contrast"`
}

// MemberRow is the flat Parquet representation of a Member.
// Unset targets are stored as 0 and a missing alias as "".
type MemberRow struct {
	FileName     string  `parquet:"file_name"`
	Alias        string  `parquet:"alias"`
	TargetWidth  int64   `parquet:"target_width"`
	TargetHeight int64   `parquet:"target_height"`
	Brightness   float64 `parquet:"brightness"`
	Contrast     float64 `parquet:"contrast"`
	Current      bool    `parquet:"current"`
}
