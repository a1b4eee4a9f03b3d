// Package schemas embeds the JSON Schemas used to validate dataset records
// and judge verdicts.
package schemas

import _ "embed"

//go:embed dataset_case.schema.json
var DatasetCaseSchemaJSON string

//go:embed judge_verdict.schema.json
var JudgeVerdictSchemaJSON string

//go:embed custom_prep_eval.schema.json
var CustomPrepEvalSchemaJSON string

//go:embed scoring_profiles.schema.json
var ScoringProfilesSchemaJSON string
