package theater

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

func newNode(id, name, grid string, sector int, status NodeStatus, tons int64, sorties int, typ, x, y string) MapNode {
	return MapNode{
		ID:          id,
		Name:        name,
		Grid:        grid,
		Sector:      sector,
		Status:      status,
		InboundTons: tons,
		Inbound:     FormatTons(tons),
		SortiesDay:  sorties,
		SortieRate:  fmt.Sprintf("%d/Day", sorties),
		Type:        typ,
		Coords:      Coords{X: x, Y: y},
	}
}

func newReadiness(unit string, value int, status string) Readiness {
	deployable := DeployableStrength(value)
	return Readiness{
		Unit:            unit,
		Value:           value,
		Status:          status,
		Deployable:      deployable,
		DeployableLabel: humanize.Comma(deployable),
	}
}

// FormatTons renders a tonnage the way the map overlay shows it ("22,400 TN").
func FormatTons(tons int64) string {
	return humanize.Comma(tons) + " TN"
}

// DeployableStrength estimates deployable personnel from a readiness
// percentage: floor(value × 1.2) thousand.
func DeployableStrength(value int) int64 {
	return int64(value*12/10) * 1000
}

// ZuluStamp formats t as the HHMMZ stamps used on messages and transactions.
func ZuluStamp(t time.Time) string {
	return t.UTC().Format("1504") + "Z"
}
