package orchestrator

import "github.com/s3ops/s3pitrestore/internal/pipeline/restorer"

// Summary aggregates one run's outcome. KeysListed is the number of
// distinct keys the Selector produced a target for. The run's overall
// error is non-nil iff the run was aborted: by a Permanent-classified
// store fault in the restore stage, or by any error out of the prefix,
// list or select stages. The Summary returned by a run aborted during
// the restore stage holds whatever counts were gathered before the
// abort.
type Summary struct {
	KeysListed int `json:"keys_listed"`
	Copied     int `json:"copied"`
	Deleted    int `json:"deleted"`
	Noop       int `json:"noop"`
	Failed     int `json:"failed"`
}

func (s *Summary) record(r restorer.Result) {
	switch {
	case r.Error != "":
		s.Failed++
	case r.Action == restorer.CopyAction:
		s.Copied++
	case r.Action == restorer.DeleteAction:
		s.Deleted++
	default:
		s.Noop++
	}
}
