// Package theater holds the INDOPACOM common operating picture: node, fleet,
// logistics, personnel and messaging types plus the static tables the
// dashboard renders.
package theater

// Page identifies one navigable dashboard screen.
type Page string

const (
	PageCOP             Page = "COP"
	PageFleet           Page = "Fleet"
	PagePersonnel       Page = "Personnel"
	PageIntel           Page = "Intel"
	PageHealth          Page = "Health"
	PageSupplyRisk      Page = "SupplyRisk"
	PageTransactions    Page = "Transactions"
	PageMissionPlanning Page = "MissionPlanning"
	PageMessaging       Page = "Messaging"
)

// PageInfo is a navigation menu entry.
type PageInfo struct {
	ID    Page   `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// NodeStatus is the alert level of a map node.
type NodeStatus string

const (
	NodeActive   NodeStatus = "active"
	NodeWarning  NodeStatus = "warning"
	NodeCritical NodeStatus = "critical"
)

// Coords places a node on the map overlay, as percentages of width/height.
type Coords struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// MapNode is a logistics node on the theater map.
type MapNode struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Grid        string     `json:"grid"`
	Sector      int        `json:"sector"`
	Status      NodeStatus `json:"status"`
	InboundTons int64      `json:"inbound_tons"`
	Inbound     string     `json:"inbound"` // e.g. "22,400 TN"
	SortiesDay  int        `json:"sorties_per_day"`
	SortieRate  string     `json:"sortie_rate"`
	Type        string     `json:"type"` // HUB, APS, NODE
	Coords      Coords     `json:"coords"`
}

// LogisticsStatus is one aggregate supply class gauge with its sparkline.
type LogisticsStatus struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value int    `json:"value"` // 0–100
	Trend []int  `json:"trend"`
	Color string `json:"color"`
}

// AssetType classifies fleet assets.
type AssetType string

const (
	AssetCarrier   AssetType = "Carrier"
	AssetDestroyer AssetType = "Destroyer"
	AssetSubmarine AssetType = "Submarine"
	AssetSquadron  AssetType = "Squadron"
)

// AssetStatus is the availability of a fleet asset.
type AssetStatus string

const (
	AssetOperational AssetStatus = "Operational"
	AssetRefit       AssetStatus = "Refit"
	AssetDeployed    AssetStatus = "Deployed"
)

// Asset is a ship or squadron.
type Asset struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     AssetType   `json:"type"`
	Status   AssetStatus `json:"status"`
	Location string      `json:"location"`
}

// RouteStatus describes how contested a supply route is.
type RouteStatus string

const (
	RouteClear      RouteStatus = "Clear"
	RouteChokePoint RouteStatus = "Choke Point"
	RouteContested  RouteStatus = "Contested"
)

// SupplyRoute is a sea or air line of communication.
type SupplyRoute struct {
	ID          string      `json:"id"`
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Integrity   int         `json:"integrity"` // 0–100
	Status      RouteStatus `json:"status"`
	Cargo       string      `json:"cargo"`
}

// RiskMetric is one bar of the supply vulnerability chart.
type RiskMetric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// TransactionStatus tracks a logistics movement.
type TransactionStatus string

const (
	TxPending   TransactionStatus = "Pending"
	TxInTransit TransactionStatus = "In-Transit"
	TxDelivered TransactionStatus = "Delivered"
	TxDelayed   TransactionStatus = "Delayed"
)

// TransportMode is the carrier medium of a transaction.
type TransportMode string

const (
	ModeAir  TransportMode = "Air"
	ModeSea  TransportMode = "Sea"
	ModeLand TransportMode = "Land"
)

// Transaction is a logistics requisition or movement.
type Transaction struct {
	ID          string            `json:"id"`
	Timestamp   string            `json:"timestamp"` // Zulu, HHMMZ
	Item        string            `json:"item"`
	Quantity    string            `json:"quantity"`
	Origin      string            `json:"origin"`
	Destination string            `json:"destination"`
	Status      TransactionStatus `json:"status"`
	Mode        TransportMode     `json:"mode"`
}

// Readiness is a component command's personnel readiness.
type Readiness struct {
	Unit            string `json:"unit"`
	Value           int    `json:"value"`
	Status          string `json:"status"`
	Deployable      int64  `json:"deployable"`
	DeployableLabel string `json:"deployable_label"`
}

// HealthMetric is one tile of the theater health grid.
type HealthMetric struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Status string `json:"status"`
}

// MaintenanceItem is a scheduled maintenance window.
type MaintenanceItem struct {
	Item string `json:"item"`
	Time string `json:"time"`
	Type string `json:"type"` // Critical, Routine
}

// TheaterHealth groups the health screen's static figures.
type TheaterHealth struct {
	ReadinessIndex int               `json:"readiness_index"`
	Metrics        []HealthMetric    `json:"metrics"`
	Maintenance    []MaintenanceItem `json:"maintenance"`
}

// PhaseStatus is the progress of a mission phase.
type PhaseStatus string

const (
	PhaseComplete PhaseStatus = "Complete"
	PhaseActive   PhaseStatus = "Active"
	PhasePlanned  PhaseStatus = "Planned"
)

// MissionPhase is one step of the mission timeline.
type MissionPhase struct {
	ID       string      `json:"id"`
	Label    string      `json:"label"`
	Duration string      `json:"duration"`
	Status   PhaseStatus `json:"status"`
}

// Mission is a named operation with objectives and phases.
type Mission struct {
	Name       string         `json:"name"`
	Objectives []string       `json:"objectives"`
	Phases     []MissionPhase `json:"phases"`
}

// Presence is a messaging contact's availability.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
	PresenceBusy    Presence = "busy"
)

// Contact is a secure messaging correspondent.
type Contact struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Status   Presence `json:"status"`
	LastSeen string   `json:"last_seen"`
}

// Classification marks a secure message.
type Classification string

const (
	TopSecret    Classification = "TOP SECRET"
	Secret       Classification = "SECRET"
	Unclassified Classification = "UNCLASSIFIED"
)

// SecureMessage is one entry in the secure messaging thread.
type SecureMessage struct {
	ID             string         `json:"id" db:"id"`
	Sender         string         `json:"sender" db:"sender"`
	Text           string         `json:"text" db:"text"`
	Timestamp      string         `json:"timestamp" db:"timestamp"`
	Classification Classification `json:"classification" db:"classification"`
	IsMe           bool           `json:"is_me" db:"is_me"`
}
