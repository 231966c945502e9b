package theater

import "slices"

// Static tables. Accessors return copies so callers may modify the result.

var pages = []PageInfo{
	{PageCOP, "Theater COP", "dashboard"},
	{PageFleet, "Fleet Assets", "directions_boat"},
	{PagePersonnel, "Personnel Readiness", "groups"},
	{PageMessaging, "Secure Messaging", "encrypted"},
	{PageMissionPlanning, "Mission Planning", "architecture"},
	{PageTransactions, "Logistics Transactions", "swap_horiz"},
	{PageSupplyRisk, "Supply Chain Risk", "route"},
	{PageHealth, "Predictive Health", "health_and_safety"},
	{PageIntel, "Intelligence Feed", "visibility"},
}

var nodes = []MapNode{
	newNode("JP-HUB", "Okinawa Hub", "26N 127E", 2, NodeActive, 22400, 18, "HUB", "20%", "30%"),
	newNode("APS-4", "Guam Distribution Ctr", "13N 144E", 4, NodeWarning, 14200, 12, "APS", "52%", "52%"),
	newNode("DARWIN", "Darwin Logistics Base", "12S 130E", 6, NodeCritical, 5800, 4, "NODE", "42%", "82%"),
}

var logistics = []LogisticsStatus{
	{ID: "cl3", Label: "CL III (Fuel)", Value: 88, Color: "#10b981", Trend: []int{85, 87, 88, 86, 88, 88}},
	{ID: "cl5", Label: "CL V (Ammo)", Value: 32, Color: "#ef4444", Trend: []int{60, 55, 45, 40, 35, 32}},
	{ID: "cl8", Label: "CL VIII (Med)", Value: 94, Color: "#60a5fa", Trend: []int{95, 94, 94, 95, 94, 94}},
}

var assets = []Asset{
	{ID: "CVN-76", Name: "USS Ronald Reagan", Type: AssetCarrier, Status: AssetOperational, Location: "Philippine Sea"},
	{ID: "DDG-54", Name: "USS Curtis Wilbur", Type: AssetDestroyer, Status: AssetDeployed, Location: "Taiwan Strait"},
	{ID: "SSN-774", Name: "USS Virginia", Type: AssetSubmarine, Status: AssetOperational, Location: "East China Sea"},
	{ID: "VFA-102", Name: "Diamondbacks", Type: AssetSquadron, Status: AssetRefit, Location: "Atsugi"},
}

var routes = []SupplyRoute{
	{ID: "SR-01", Origin: "Dar es Salaam", Destination: "Darwin", Integrity: 94, Status: RouteClear, Cargo: "Fuel/Bulk"},
	{ID: "SR-04", Origin: "San Diego", Destination: "Guam", Integrity: 78, Status: RouteChokePoint, Cargo: "Class V"},
	{ID: "SR-09", Origin: "Atsugi", Destination: "Okinawa", Integrity: 42, Status: RouteContested, Cargo: "AvGas"},
	{ID: "SR-12", Origin: "Darwin", Destination: "Guam", Integrity: 88, Status: RouteClear, Cargo: "Med"},
}

var riskMetrics = []RiskMetric{
	{Label: "Choke Point Density", Value: 72},
	{Label: "Attrition Forecast", Value: 18},
	{Label: "Reroute Capacity", Value: 45},
}

var transactions = []Transaction{
	{ID: "REQ-8821", Timestamp: "1402Z", Item: "F-35 Engine Components", Quantity: "4 Units", Origin: "Atsugi", Destination: "Okinawa", Status: TxInTransit, Mode: ModeAir},
	{ID: "MOV-5542", Timestamp: "1315Z", Item: "JP-8 Aviation Fuel", Quantity: "120K GAL", Origin: "Guam", Destination: "CVN-76 Reagan", Status: TxDelivered, Mode: ModeSea},
	{ID: "REQ-1092", Timestamp: "1244Z", Item: "155mm Artillery Rounds", Quantity: "2200 RDS", Origin: "Darwin", Destination: "Sector 4 Depot", Status: TxDelayed, Mode: ModeLand},
	{ID: "MOV-9901", Timestamp: "1120Z", Item: "Medical Trauma Kits", Quantity: "500 PCS", Origin: "San Diego", Destination: "Guam APS", Status: TxPending, Mode: ModeAir},
	{ID: "REQ-4431", Timestamp: "0930Z", Item: "Replacement Radar Array", Quantity: "1 Unit", Origin: "Pearl Harbor", Destination: "Okinawa Hub", Status: TxInTransit, Mode: ModeSea},
}

var readiness = []Readiness{
	newReadiness("7th Fleet", 94, "Full"),
	newReadiness("USARPAC", 82, "Marginal"),
	newReadiness("PACAF", 88, "Ready"),
	newReadiness("MARFORPAC", 91, "Full"),
}

var health = TheaterHealth{
	ReadinessIndex: 92,
	Metrics: []HealthMetric{
		{Label: "Cyber Mesh", Value: 100, Status: "Nominal"},
		{Label: "Supply Integrity", Value: 64, Status: "Degraded"},
		{Label: "Comm Uplink", Value: 98, Status: "Nominal"},
		{Label: "Power Grid", Value: 89, Status: "Stable"},
	},
	Maintenance: []MaintenanceItem{
		{Item: "Okinawa SATCOM Array", Time: "T-24H", Type: "Critical"},
		{Item: "Guam Local Power Gen-2", Time: "T-48H", Type: "Routine"},
	},
}

var mission = Mission{
	Name: "OPERATION AZURE SHIELD",
	Objectives: []string{
		"Secure Sector 4 maritime lanes",
		"Establish forward resupply at Okinawa",
		"Neutralize aerial corridor threats",
	},
	Phases: []MissionPhase{
		{ID: "P1", Label: "Deployment & Staging", Duration: "T+48H", Status: PhaseActive},
		{ID: "P2", Label: "Intelligence Prep", Duration: "T+72H", Status: PhasePlanned},
		{ID: "P3", Label: "Primary Engagement", Duration: "T+96H", Status: PhasePlanned},
		{ID: "P4", Label: "Sustainment Phase", Duration: "T+120H", Status: PhasePlanned},
	},
}

var contacts = []Contact{
	{ID: "ADM-S", Name: "ADM. SAMUELS", Role: "7th Fleet Cmd", Status: PresenceOnline, LastSeen: "NOW"},
	{ID: "GEN-W", Name: "GEN. WALKER", Role: "PACAF Cmd", Status: PresenceBusy, LastSeen: "2M AGO"},
	{ID: "COL-K", Name: "COL. KHAN", Role: "Logistics Dir", Status: PresenceOffline, LastSeen: "1H AGO"},
	{ID: "JOC-T", Name: "JOC-THEATER", Role: "Theater Ops", Status: PresenceOnline, LastSeen: "NOW"},
}

var seedMessages = []SecureMessage{
	{ID: "1", Sender: "ADM. SAMUELS", Text: "Operation Azure Shield staging is at 90%. Confirm logistics uplift for Okinawa Hub.", Timestamp: "1430Z", Classification: Secret},
	{ID: "2", Sender: SenderMe, Text: "Logistics confirm. Okinawa Hub is currently active. T+24H projection looks stable.", Timestamp: "1432Z", Classification: Secret, IsMe: true},
	{ID: "3", Sender: "ADM. SAMUELS", Text: "Understood. Watch the Malacca choke point data on the Risk screen. We are seeing noise.", Timestamp: "1435Z", Classification: TopSecret},
}

// SenderMe is the sender name of messages typed at this console.
const SenderMe = "ME"

// Pages returns the navigation menu.
func Pages() []PageInfo { return slices.Clone(pages) }

// Nodes returns the theater map nodes.
func Nodes() []MapNode { return slices.Clone(nodes) }

// Node looks up a map node by ID.
func Node(id string) (MapNode, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return MapNode{}, false
}

// Logistics returns the aggregate supply class gauges.
func Logistics() []LogisticsStatus {
	out := make([]LogisticsStatus, len(logistics))
	for i, l := range logistics {
		l.Trend = slices.Clone(l.Trend)
		out[i] = l
	}
	return out
}

// Assets returns the fleet.
func Assets() []Asset { return slices.Clone(assets) }

// Routes returns the supply routes.
func Routes() []SupplyRoute { return slices.Clone(routes) }

// RiskMetrics returns the supply vulnerability chart values.
func RiskMetrics() []RiskMetric { return slices.Clone(riskMetrics) }

// Transactions returns the logistics transaction log, newest first.
func Transactions() []Transaction { return slices.Clone(transactions) }

// PersonnelReadiness returns per-command readiness.
func PersonnelReadiness() []Readiness { return slices.Clone(readiness) }

// Health returns the theater health screen figures.
func Health() TheaterHealth {
	h := health
	h.Metrics = slices.Clone(health.Metrics)
	h.Maintenance = slices.Clone(health.Maintenance)
	return h
}

// DefaultMission returns the preloaded mission plan.
func DefaultMission() Mission {
	m := mission
	m.Objectives = slices.Clone(mission.Objectives)
	m.Phases = slices.Clone(mission.Phases)
	return m
}

// Contacts returns the secure messaging contacts.
func Contacts() []Contact { return slices.Clone(contacts) }

// SeedMessages returns the thread the messaging screen opens with.
func SeedMessages() []SecureMessage { return slices.Clone(seedMessages) }
