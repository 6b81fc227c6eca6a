package viewdef

// r4ResourceTypes is the set of FHIR R4 resource type names a
// ViewDefinition.resource may name. Kept as a literal configuration
// constant, the same "baked-in lookup table" idiom used for the T-SQL
// reserved-keyword list in identifiers.go.
var r4ResourceTypes = map[string]bool{
	"Account": true, "ActivityDefinition": true, "AdverseEvent": true,
	"AllergyIntolerance": true, "Appointment": true, "AppointmentResponse": true,
	"AuditEvent": true, "Basic": true, "Binary": true, "BiologicallyDerivedProduct": true,
	"BodyStructure": true, "Bundle": true, "CapabilityStatement": true,
	"CarePlan": true, "CareTeam": true, "CatalogEntry": true, "ChargeItem": true,
	"ChargeItemDefinition": true, "Claim": true, "ClaimResponse": true,
	"ClinicalImpression": true, "CodeSystem": true, "Communication": true,
	"CommunicationRequest": true, "CompartmentDefinition": true, "Composition": true,
	"ConceptMap": true, "Condition": true, "Consent": true, "Contract": true,
	"Coverage": true, "CoverageEligibilityRequest": true, "CoverageEligibilityResponse": true,
	"DetectedIssue": true, "Device": true, "DeviceDefinition": true,
	"DeviceMetric": true, "DeviceRequest": true, "DeviceUseStatement": true,
	"DiagnosticReport": true, "DocumentManifest": true, "DocumentReference": true,
	"DomainResource": true, "EffectEvidenceSynthesis": true, "Encounter": true,
	"Endpoint": true, "EnrollmentRequest": true, "EnrollmentResponse": true,
	"EpisodeOfCare": true, "EventDefinition": true, "Evidence": true,
	"EvidenceVariable": true, "ExampleScenario": true, "ExplanationOfBenefit": true,
	"FamilyMemberHistory": true, "Flag": true, "Goal": true, "GraphDefinition": true,
	"Group": true, "GuidanceResponse": true, "HealthcareService": true,
	"ImagingStudy": true, "Immunization": true, "ImmunizationEvaluation": true,
	"ImmunizationRecommendation": true, "ImplementationGuide": true, "InsurancePlan": true,
	"Invoice": true, "Library": true, "Linkage": true, "List": true,
	"Location": true, "Measure": true, "MeasureReport": true, "Media": true,
	"Medication": true, "MedicationAdministration": true, "MedicationDispense": true,
	"MedicationKnowledge": true, "MedicationRequest": true, "MedicationStatement": true,
	"MedicinalProduct": true, "MedicinalProductAuthorization": true,
	"MedicinalProductContraindication": true, "MedicinalProductIndication": true,
	"MedicinalProductIngredient": true, "MedicinalProductInteraction": true,
	"MedicinalProductManufactured": true, "MedicinalProductPackaged": true,
	"MedicinalProductPharmaceutical": true, "MedicinalProductUndesirableEffect": true,
	"MessageDefinition": true, "MessageHeader": true, "MolecularSequence": true,
	"NamingSystem": true, "NutritionOrder": true, "Observation": true,
	"ObservationDefinition": true, "OperationDefinition": true, "OperationOutcome": true,
	"Organization": true, "OrganizationAffiliation": true, "Parameters": true,
	"Patient": true, "PaymentNotice": true, "PaymentReconciliation": true,
	"Person": true, "PlanDefinition": true, "Practitioner": true,
	"PractitionerRole": true, "Procedure": true, "Provenance": true,
	"Questionnaire": true, "QuestionnaireResponse": true, "RelatedPerson": true,
	"RequestGroup": true, "ResearchDefinition": true, "ResearchElementDefinition": true,
	"ResearchStudy": true, "ResearchSubject": true, "RiskAssessment": true,
	"RiskEvidenceSynthesis": true, "Schedule": true, "SearchParameter": true,
	"ServiceRequest": true, "Slot": true, "Specimen": true,
	"SpecimenDefinition": true, "StructureDefinition": true, "StructureMap": true,
	"Subscription": true, "Substance": true, "SubstanceNucleicAcid": true,
	"SubstancePolymer": true, "SubstanceProtein": true,
	"SubstanceReferenceInformation": true, "SubstanceSourceMaterial": true,
	"SubstanceSpecification": true, "SupplyDelivery": true, "SupplyRequest": true,
	"Task": true, "TerminologyCapabilities": true, "TestReport": true,
	"TestScript": true, "ValueSet": true, "VerificationResult": true,
	"VisionPrescription": true,
}

// IsR4Resource reports whether name is a recognised FHIR R4 resource type.
func IsR4Resource(name string) bool {
	return r4ResourceTypes[name]
}

// fhirPrimitiveTypes is the set of recognised FHIR primitive type names a
// Column.Type may declare, including the handful of primitives that all
// map to the same T-SQL type.
var fhirPrimitiveTypes = map[string]bool{
	"id": true, "string": true, "code": true, "uri": true, "url": true,
	"canonical": true, "markdown": true, "oid": true, "uuid": true,
	"boolean": true,
	"integer": true, "positiveInt": true, "unsignedInt": true, "integer64": true,
	"decimal": true,
	"date": true, "dateTime": true, "instant": true, "time": true,
	"base64Binary": true,
}

// IsFHIRPrimitive reports whether typ is a recognised FHIR primitive type
// name usable in Column.Type.
func IsFHIRPrimitive(typ string) bool {
	return fhirPrimitiveTypes[typ]
}
