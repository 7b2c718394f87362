package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ThreatSeverity values
type ThreatSeverity string

const (
	SeverityCritical ThreatSeverity = "critical"
	SeverityHigh     ThreatSeverity = "high"
	SeverityMedium   ThreatSeverity = "medium"
	SeverityLow      ThreatSeverity = "low"
	SeverityInfo     ThreatSeverity = "info"
)

// ThreatStatus values form the incident state machine
type ThreatStatus string

const (
	StatusDetected      ThreatStatus = "detected"
	StatusInvestigating ThreatStatus = "investigating"
	StatusContained     ThreatStatus = "contained"
	StatusResolved      ThreatStatus = "resolved"
	StatusFalsePositive ThreatStatus = "false_positive"
	StatusEscalated     ThreatStatus = "escalated"
)

// ThreatPriority is derived from severity and never caller-settable
type ThreatPriority string

const (
	PriorityP1 ThreatPriority = "p1"
	PriorityP2 ThreatPriority = "p2"
	PriorityP3 ThreatPriority = "p3"
	PriorityP4 ThreatPriority = "p4"
)

// ThreatType covers the recognized attack classes
type ThreatType string

const (
	ThreatTypeMalware             ThreatType = "malware"
	ThreatTypePhishing            ThreatType = "phishing"
	ThreatTypeRansomware          ThreatType = "ransomware"
	ThreatTypeDDoS                ThreatType = "ddos"
	ThreatTypeSQLInjection        ThreatType = "sql_injection"
	ThreatTypeXSS                 ThreatType = "xss"
	ThreatTypePrivilegeEscalation ThreatType = "privilege_escalation"
	ThreatTypeDataBreach          ThreatType = "data_breach"
	ThreatTypeInsiderThreat       ThreatType = "insider_threat"
	ThreatTypeSocialEngineering   ThreatType = "social_engineering"
	ThreatTypeZeroDay             ThreatType = "zero_day"
	ThreatTypeAPT                 ThreatType = "apt"
	ThreatTypeBotnet              ThreatType = "botnet"
	ThreatTypeCryptoMining        ThreatType = "crypto_mining"
	ThreatTypeOther               ThreatType = "other"
)

// Detection result values
const (
	ResultAnomaly = "anomaly"
	ResultNormal  = "normal"
)

// Detection sources
const (
	DetectedByMLModel      = "ml_model"
	DetectedByRuleBased    = "rule_based"
	DetectedByManual       = "manual"
	DetectedByExternalFeed = "external_feed"
)

// Threat represents a reported or detected security incident
type Threat struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization" bson:"organization_id"`
	ReportedBy     primitive.ObjectID `json:"reportedBy" bson:"reported_by"`
	AssignedTo     primitive.ObjectID `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`

	Title       string         `json:"title" bson:"title"`
	Description string         `json:"description" bson:"description"`
	Type        ThreatType     `json:"type" bson:"type"`
	Category    string         `json:"category" bson:"category"` // network, application, endpoint, data, user, cloud, iot
	Severity    ThreatSeverity `json:"severity" bson:"severity"`
	Status      ThreatStatus   `json:"status" bson:"status"`
	Priority    ThreatPriority `json:"priority" bson:"priority"`

	// DedupeKey correlates repeated reports of the same event
	// (hash of organization, type, source IP and title).
	DedupeKey string `json:"dedupeKey,omitempty" bson:"dedupe_key,omitempty"`

	AIDetection      AIDetection       `json:"aiDetection" bson:"ai_detection"`
	TechnicalDetails ThreatTechDetails `json:"technicalDetails" bson:"technical_details"`
	AffectedAssets   []AffectedAsset   `json:"affectedAssets" bson:"affected_assets"`
	Timeline         []TimelineEntry   `json:"timeline" bson:"timeline"`
	Notes            []ThreatNote      `json:"notes,omitempty" bson:"notes,omitempty"`
	Tags             []string          `json:"tags,omitempty" bson:"tags,omitempty"`

	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// AIDetection is the anomaly classification block. Result is always set once
// an incident exists; a partial detection block is a data-integrity bug.
type AIDetection struct {
	DetectedBy    string    `json:"detectedBy" bson:"detected_by"`
	Confidence    int       `json:"confidence" bson:"confidence"`
	Result        string    `json:"result" bson:"result"`
	ModelVersion  string    `json:"modelVersion,omitempty" bson:"model_version,omitempty"`
	DetectionTime time.Time `json:"detectionTime" bson:"detection_time"`
	Indicators    []string  `json:"indicators" bson:"indicators"`
}

// ThreatTechDetails carries network-level evidence for the incident
type ThreatTechDetails struct {
	SourceIP        string `json:"sourceIP,omitempty" bson:"source_ip,omitempty"`
	DestinationIP   string `json:"destinationIP,omitempty" bson:"destination_ip,omitempty"`
	SourcePort      int    `json:"sourcePort,omitempty" bson:"source_port,omitempty"`
	DestinationPort int    `json:"destinationPort,omitempty" bson:"destination_port,omitempty"`
	Protocol        string `json:"protocol,omitempty" bson:"protocol,omitempty"`
}

// AffectedAsset links an incident to an asset it touched
type AffectedAsset struct {
	AssetID primitive.ObjectID `json:"asset" bson:"asset_id"`
	Impact  string             `json:"impact" bson:"impact"` // none, low, medium, high, critical
	Status  string             `json:"status" bson:"status"` // affected, isolated, quarantined, cleaned, restored
	Notes   string             `json:"notes,omitempty" bson:"notes,omitempty"`
}

// TimelineEntry is one append-only event in the incident history
type TimelineEntry struct {
	Event     string             `json:"event" bson:"event"`
	Timestamp time.Time          `json:"timestamp" bson:"timestamp"`
	Actor     primitive.ObjectID `json:"actor,omitempty" bson:"actor,omitempty"`
	Details   string             `json:"details,omitempty" bson:"details,omitempty"`
}

// ThreatNote is a free-form analyst note on an incident
type ThreatNote struct {
	Content   string             `json:"content" bson:"content"`
	CreatedBy primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// Collection names for threats
const (
	CollectionThreats = "threats"
)
