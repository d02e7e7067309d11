package outcome

// Stage identifies one step of the per-repository normalization pipeline.
// Stages run in a fixed order; the first failing stage terminates the repo.
type Stage string

const (
	StageAcquire             Stage = "acquire"
	StageResolveRevision     Stage = "resolve-revision"
	StageProjectDescriptor   Stage = "project-descriptor"
	StageClasspathDescriptor Stage = "classpath-descriptor"
	StageNormalizeTree       Stage = "normalize-tree"
	StageRename              Stage = "rename"
)

type Status string

const (
	StatusDone   Status = "DONE"
	StatusFailed Status = "FAILED"
)

// Conflict is a structural issue detected (and recorded, not fixed) during
// normalization, e.g. two source files mapping to the same destination path.
type Conflict struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Record is the per-repository result of one pipeline run. It is created
// fresh for each repository and immutable once written to the output sinks.
type Record struct {
	Student        string     `json:"student"`
	Repo           string     `json:"repo"`
	ResolvedCommit string     `json:"resolved_commit,omitempty"`
	StagesRepaired []Stage    `json:"stages_repaired,omitempty"`
	Conflicts      []Conflict `json:"conflicts,omitempty"`
	Status         Status     `json:"status"`
	FailedStage    Stage      `json:"failed_stage,omitempty"`
	Reason         string     `json:"reason,omitempty"`
}

// Repaired records that a stage had to repair project structure.
func (r *Record) Repaired(s Stage) {
	for _, have := range r.StagesRepaired {
		if have == s {
			return
		}
	}
	r.StagesRepaired = append(r.StagesRepaired, s)
}

// Fail marks the record failed at the given stage. The first failure wins;
// later calls are ignored so the originating stage is preserved.
func (r *Record) Fail(s Stage, reason string) {
	if r.Status == StatusFailed {
		return
	}
	r.Status = StatusFailed
	r.FailedStage = s
	r.Reason = reason
}

func Done(student, repo string) Record {
	return Record{Student: student, Repo: repo, Status: StatusDone}
}
