package audit

import (
	"fmt"
	"strings"
)

// Study is a fixed audit-study schema: an ordered field list backing both the
// entry form and the CSV export header.
type Study struct {
	Key        string
	Title      string
	Collection string
	Fields     []string
}

var StudyA = Study{
	Key:        "a",
	Title:      "Study A — Postoperative Outcomes",
	Collection: "audit_study_a",
	Fields: []string{
		"StudyID",
		"HospitalNumber",
		"FullName",
		"DOB",
		"Sex",
		"Age",
		"DateOfSurgery",
		"ElectiveOrEmergency",
		"Indication",
		"PrimaryDiagnosis",
		"Procedure",
		"OperativeApproach",
		"ASA",
		"AnaesthesiaType",
		"OperativeTimeMinutes",
		"EstimatedBloodLoss_ml",
		"StomaFormed",
		"SurgeonGrade",
		"ICUAdmission",
		"PostopComplication_YN",
		"ComplicationType",
		"ClavienDindoGrade",
		"Reoperation_YN",
		"Readmission30d_YN",
		"DateOfDischarge",
		"LengthOfStay_days",
		"Mortality30d_YN",
		"DateOfDeath",
		"Notes",
		"SourceDocument",
	},
}

var StudyB = Study{
	Key:        "b",
	Title:      "Study B — Colorectal Cancer Resection Outcomes",
	Collection: "audit_study_b",
	Fields: []string{
		"StudyID",
		"HospitalNumber",
		"FullName",
		"DOB",
		"Sex",
		"Age",
		"DateOfSurgery",
		"ElectiveOrEmergency",
		"Procedure",
		"OperativeApproach",
		"Surgeon",
		"TumourLocation",
		"PreopStage",
		"Neoadjuvant_YN",
		"AdjuvantPlanned_YN",
		"Pathology_TumourType",
		"pT",
		"pN",
		"pM",
		"TNMStage",
		"ResectionMarginStatus",
		"CircumferentialMargin_mm",
		"DistalMargin_mm",
		"NumberOfNodesExamined",
		"NumberOfNodesPositive",
		"LymphovascularInvasion",
		"PerineuralInvasion",
		"TumourGrade",
		"AnastomoticLeak_YN",
		"30dayComplication_YN",
		"ClavienDindoGrade",
		"Reoperation_YN",
		"LengthOfStay_days",
		"30dayMortality_YN",
		"Readmission30d_YN",
		"PathologyReportRef",
		"CoveringIleostomy_YN",
		"30dReturnToTheatre_YN_Procedure",
	},
}

// Studies indexes the known studies by key.
var Studies = map[string]Study{
	StudyA.Key: StudyA,
	StudyB.Key: StudyB,
}

// Lookup resolves a study key case-insensitively.
func Lookup(key string) (Study, bool) {
	s, ok := Studies[strings.ToLower(strings.TrimSpace(key))]
	return s, ok
}

// CheckFields rejects payloads carrying keys outside the study schema.
// Missing fields are fine; they export as empty cells.
func (s Study) CheckFields(fields map[string]string) error {
	known := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		known[f] = struct{}{}
	}
	for k := range fields {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("unknown field %q for study %s", k, s.Key)
		}
	}
	return nil
}
