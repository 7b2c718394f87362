package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetType represents different kinds of tracked assets
type AssetType string

const (
	AssetTypeServer        AssetType = "server"
	AssetTypeWorkstation   AssetType = "workstation"
	AssetTypeLaptop        AssetType = "laptop"
	AssetTypeMobileDevice  AssetType = "mobile_device"
	AssetTypeNetworkDevice AssetType = "network_device"
	AssetTypeCloudService  AssetType = "cloud_service"
	AssetTypeApplication   AssetType = "application"
	AssetTypeDatabase      AssetType = "database"
	AssetTypeWebsite       AssetType = "website"
	AssetTypeAPIEndpoint   AssetType = "api_endpoint"
	AssetTypeStorageDevice AssetType = "storage_device"
	AssetTypeIoTDevice     AssetType = "iot_device"
	AssetTypeOther         AssetType = "other"
)

// AssetCategory is the business criticality of an asset
type AssetCategory string

const (
	CategoryCritical AssetCategory = "critical"
	CategoryHigh     AssetCategory = "high"
	CategoryMedium   AssetCategory = "medium"
	CategoryLow      AssetCategory = "low"
)

// EncryptionStatus values
const (
	EncryptionEncrypted    = "encrypted"
	EncryptionNotEncrypted = "not_encrypted"
	EncryptionUnknown      = "unknown"
)

// Vulnerability status values
const (
	VulnStatusOpen          = "open"
	VulnStatusInProgress    = "in_progress"
	VulnStatusResolved      = "resolved"
	VulnStatusFalsePositive = "false_positive"
)

// Asset represents a tracked digital or physical resource
type Asset struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID primitive.ObjectID `json:"organization" bson:"organization_id"`
	Name           string             `json:"name" bson:"name"`
	Description    string             `json:"description,omitempty" bson:"description,omitempty"`
	Type           AssetType          `json:"type" bson:"type"`
	Category       AssetCategory      `json:"category" bson:"category"`

	TechnicalDetails TechnicalDetails `json:"technicalDetails" bson:"technical_details"`
	Security         SecurityPosture  `json:"security" bson:"security"`
	RiskAssessment   RiskAssessment   `json:"riskAssessment" bson:"risk_assessment"`

	// Derived from the overall risk score on read, never persisted.
	RiskLevel string `json:"riskLevel,omitempty" bson:"-"`

	Tags      []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	CreatedBy primitive.ObjectID `json:"createdBy" bson:"created_by"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`

	// Optimistic concurrency: updates filter on the version read and bump it.
	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// TechnicalDetails carries identification facts about the asset
type TechnicalDetails struct {
	IPAddress       string `json:"ipAddress,omitempty" bson:"ip_address,omitempty"`
	Hostname        string `json:"hostname,omitempty" bson:"hostname,omitempty"`
	OperatingSystem string `json:"operatingSystem,omitempty" bson:"operating_system,omitempty"`
	Location        string `json:"location,omitempty" bson:"location,omitempty"`
	Department      string `json:"department,omitempty" bson:"department,omitempty"`
	Owner           string `json:"owner,omitempty" bson:"owner,omitempty"`
}

// SecurityPosture holds the protective controls and known weaknesses that
// feed the risk score
type SecurityPosture struct {
	EncryptionStatus   string               `json:"encryptionStatus" bson:"encryption_status"`
	AntivirusInstalled bool                 `json:"antivirusInstalled" bson:"antivirus_installed"`
	FirewallEnabled    bool                 `json:"firewallEnabled" bson:"firewall_enabled"`
	LastSecurityScan   *time.Time           `json:"lastSecurityScan,omitempty" bson:"last_security_scan,omitempty"`
	Vulnerabilities    []AssetVulnerability `json:"vulnerabilities" bson:"vulnerabilities"`
}

// AssetVulnerability is an embedded vulnerability record on an asset
type AssetVulnerability struct {
	ID           string    `json:"id" bson:"id"`
	CVEID        string    `json:"cveId,omitempty" bson:"cve_id,omitempty"`
	Severity     string    `json:"severity" bson:"severity"` // critical, high, medium, low
	Description  string    `json:"description,omitempty" bson:"description,omitempty"`
	Status       string    `json:"status" bson:"status"`
	Remediation  string    `json:"remediation,omitempty" bson:"remediation,omitempty"`
	DiscoveredAt time.Time `json:"discoveredAt" bson:"discovered_at"`
}

// RiskAssessment is the derived scoring block on an asset. OverallRiskScore
// is always recomputed from the factors, posture and open vulnerabilities;
// it is never written independently of its inputs.
type RiskAssessment struct {
	OverallRiskScore  int                `json:"overallRiskScore" bson:"overall_risk_score"`
	RiskFactors       RiskFactors        `json:"riskFactors" bson:"risk_factors"`
	LastAssessment    time.Time          `json:"lastAssessment" bson:"last_assessment"`
	NextAssessment    time.Time          `json:"nextAssessment" bson:"next_assessment"`
	AssessmentHistory []AssessmentRecord `json:"assessmentHistory" bson:"assessment_history"`
}

// RiskFactors are the four named inputs to the risk score, each 0-100
type RiskFactors struct {
	Exposure      int `json:"exposure" bson:"exposure"`
	Vulnerability int `json:"vulnerability" bson:"vulnerability"`
	Threat        int `json:"threat" bson:"threat"`
	Impact        int `json:"impact" bson:"impact"`
}

// AssessmentRecord is one append-only entry in the assessment history
type AssessmentRecord struct {
	Score      int                `json:"score" bson:"score"`
	Factors    RiskFactors        `json:"factors" bson:"factors"`
	AssessedAt time.Time          `json:"assessedAt" bson:"assessed_at"`
	AssessedBy primitive.ObjectID `json:"assessedBy,omitempty" bson:"assessed_by,omitempty"`
}

// Collection names for assets
const (
	CollectionAssets = "assets"
)
