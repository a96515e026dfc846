package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jbweber/hypermon/internal/inventory"
)

var (
	baseHeaders      = []string{"NAME", "STATE", "MEMORY", "MAX MEMORY", "VCPUs", "CPU TIME"}
	interfaceHeaders = []string{"IFACES", "RX BYTES", "TX BYTES"}
)

// TableFormatter renders one bordered row per domain.
type TableFormatter struct {
	NoHeaders      bool
	ShowInterfaces bool
	Styled         bool
}

// FormatDomainList formats the inventory as a table. Interface columns are
// empty for domains whose interfaces were not collected, so they read
// differently from a domain with zero interfaces.
func (f *TableFormatter) FormatDomainList(records []inventory.DomainRecord) (string, error) {
	if len(records) == 0 {
		return "No domains found\n", nil
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	header := cell
	if f.Styled {
		header = header.Bold(true)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	if !f.NoHeaders {
		headers := append([]string{}, baseHeaders...)
		if f.ShowInterfaces {
			headers = append(headers, interfaceHeaders...)
		}
		t.Headers(headers...)
	}

	for _, rec := range records {
		t.Row(f.row(rec)...)
	}

	return t.String() + "\n", nil
}

func (f *TableFormatter) row(rec inventory.DomainRecord) []string {
	row := []string{
		rec.Name,
		rec.State.String(),
		strconv.FormatUint(rec.Memory, 10),
		strconv.FormatUint(rec.MaxMemory, 10),
		strconv.FormatUint(uint64(rec.VCPUs), 10),
		strconv.FormatUint(rec.CPUTime, 10),
	}
	if !f.ShowInterfaces {
		return row
	}

	items, collected := rec.Interfaces.Get()
	if !collected {
		return append(row, "", "", "")
	}
	rx, tx := rec.Interfaces.Totals()
	return append(row,
		strconv.Itoa(len(items)),
		strconv.FormatInt(rx, 10),
		strconv.FormatInt(tx, 10),
	)
}
