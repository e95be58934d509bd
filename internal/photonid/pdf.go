package photonid

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// DiscriminantNames names the five discriminants computed for each
// shower peak, in the fixed order spec §4.9 enumerates them.
var DiscriminantNames = [5]string{
	"PeakRMS",
	"ProfileStart",
	"ProfileDiscrepancy",
	"EnergyFraction",
	"TrackDistance",
}

const (
	discPeakRMS = iota
	discProfileStart
	discProfileDiscrepancy
	discEnergyFraction
	discTrackDistance
)

// histogramShape fixes the bin count/low/high every discriminant's
// histograms share; spec §6 calls for these to be "fixed... read from
// the same file", so a trained file always carries its own shape.
type histogramShape struct {
	nBins    int
	low, high float64
}

var defaultShapes = [5]histogramShape{
	discPeakRMS:             {50, 0, 50},
	discProfileStart:        {50, 0, 30},
	discProfileDiscrepancy:  {50, 0, 1},
	discEnergyFraction:      {50, 0, 1},
	discTrackDistance:       {50, 0, 1000},
}

// Table is the persisted PDF document of spec §6: ascending energy-bin
// lower edges, and for each bin and each discriminant a normalised
// signal and background histogram.
type Table struct {
	EnergyBinLowerEdges []float64
	Signal              [][5]*Histogram // [energyBin][discriminant]
	Background          [][5]*Histogram
}

// NewTable returns an empty, untrained table with len(edges) energy
// bins, each discriminant histogram shaped per defaultShapes.
func NewTable(edges []float64) *Table {
	t := &Table{EnergyBinLowerEdges: append([]float64{}, edges...)}
	t.Signal = make([][5]*Histogram, len(edges))
	t.Background = make([][5]*Histogram, len(edges))
	for i := range edges {
		for d := 0; d < 5; d++ {
			t.Signal[i][d] = NewHistogram(defaultShapes[d].nBins, defaultShapes[d].low, defaultShapes[d].high)
			t.Background[i][d] = NewHistogram(defaultShapes[d].nBins, defaultShapes[d].low, defaultShapes[d].high)
		}
	}
	return t
}

// EnergyBin returns the index of the largest lower edge <= e. Values
// below the first edge fail; values above the last edge fall in the
// last bin.
func (t *Table) EnergyBin(e float64) (int, bool) {
	idx := sort.Search(len(t.EnergyBinLowerEdges), func(i int) bool {
		return t.EnergyBinLowerEdges[i] > e
	})
	bin := idx - 1
	if bin < 0 {
		return 0, false
	}
	if bin >= len(t.Signal) {
		bin = len(t.Signal) - 1
	}
	return bin, true
}

// Normalize rescales every histogram to unit integral, the training
// shutdown step spec §4.9 describes.
func (t *Table) Normalize() {
	for bin := range t.Signal {
		for d := 0; d < 5; d++ {
			t.Signal[bin][d].Normalize()
			t.Background[bin][d].Normalize()
		}
	}
}

// WriteTo serialises t in the flat text format spec §6 describes:
// EnergyBinLowerEdges on one line, then one "PhotonSig<Name>_<i>" /
// "PhotonBkg<Name>_<i>" block per bin per discriminant.
func (t *Table) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprint(bw, "EnergyBinLowerEdges")
	for _, e := range t.EnergyBinLowerEdges {
		fmt.Fprintf(bw, " %g", e)
	}
	fmt.Fprintln(bw)

	writeHist := func(label string, bin, d int, h *Histogram) {
		fmt.Fprintf(bw, "Photon%s%s_%d %d %g %g", label, DiscriminantNames[d], bin, len(h.Counts), h.Low, h.High)
		for _, c := range h.Counts {
			fmt.Fprintf(bw, " %g", c)
		}
		fmt.Fprintln(bw)
	}
	for bin := range t.Signal {
		for d := 0; d < 5; d++ {
			writeHist("Sig", bin, d, t.Signal[bin][d])
			writeHist("Bkg", bin, d, t.Background[bin][d])
		}
	}
	return bw.Flush()
}

// ReadFrom parses the format WriteTo writes.
func ReadFrom(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var edges []float64
	t := &Table{}

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch {
		case fields[0] == "EnergyBinLowerEdges":
			for _, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("photonid: parsing EnergyBinLowerEdges: %w", err)
				}
				edges = append(edges, v)
			}
			t.EnergyBinLowerEdges = edges
			t.Signal = make([][5]*Histogram, len(edges))
			t.Background = make([][5]*Histogram, len(edges))

		case strings.HasPrefix(fields[0], "PhotonSig") || strings.HasPrefix(fields[0], "PhotonBkg"):
			isSig := strings.HasPrefix(fields[0], "PhotonSig")
			name := strings.TrimPrefix(fields[0], "PhotonSig")
			name = strings.TrimPrefix(name, "PhotonBkg")
			parts := strings.SplitN(name, "_", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("photonid: malformed histogram key %q", fields[0])
			}
			discIdx := discriminantIndex(parts[0])
			bin, err := strconv.Atoi(parts[1])
			if err != nil || discIdx < 0 || bin < 0 || bin >= len(t.Signal) {
				return nil, fmt.Errorf("photonid: malformed histogram key %q", fields[0])
			}
			if len(fields) < 4 {
				return nil, fmt.Errorf("photonid: truncated histogram record %q", fields[0])
			}
			nBins, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("photonid: bad bin count in %q: %w", fields[0], err)
			}
			low, err1 := strconv.ParseFloat(fields[2], 64)
			high, err2 := strconv.ParseFloat(fields[3], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("photonid: bad low/high in %q", fields[0])
			}
			h := NewHistogram(nBins, low, high)
			for i, f := range fields[4:] {
				if i >= nBins {
					break
				}
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("photonid: bad count in %q: %w", fields[0], err)
				}
				h.Counts[i] = v
			}
			if isSig {
				t.Signal[bin][discIdx] = h
			} else {
				t.Background[bin][discIdx] = h
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func discriminantIndex(name string) int {
	for i, n := range DiscriminantNames {
		if n == name {
			return i
		}
	}
	return -1
}
