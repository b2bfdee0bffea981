//go:build analysis

package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"BLISS-Signature/bliss"
	"BLISS-Signature/bliss/keys"
)

type summaryStats struct {
	Count    int
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	Skewness float64
}

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	var m2, m3 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= float64(n)
	m3 /= float64(n)
	std := math.Sqrt(m2)
	skew := 0.0
	if std > 0 {
		skew = m3 / (std * std * std)
	}
	return summaryStats{Count: n, Mean: mean, Std: std, Min: sorted[0], Max: sorted[n-1], Skewness: skew}
}

func main() {
	variant := flag.Int("variant", 1, "BLISS variant id")
	samples := flag.Int("samples", 1<<16, "Gaussian samples to draw")
	signings := flag.Int("signings", 32, "signatures to produce for size statistics")
	seed := flag.String("seed", "bliss-analysis", "sampler seed string")
	outDir := flag.String("out", "analysis_out", "output directory")
	flag.Parse()

	set, err := bliss.ParameterSetByID(*variant)
	if err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	page := components.NewPage()
	page.AddCharts(gaussianChart(set, *seed, *samples))
	page.AddCharts(signatureChart(set, *signings))

	outPath := filepath.Join(*outDir, "bliss_analysis.html")
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s\n", outPath)
}

// gaussianChart draws a histogram of the discrete Gaussian sampler output
// with the sample moments in the subtitle.
func gaussianChart(set *bliss.ParameterSet, seed string, samples int) *charts.Bar {
	newHash, _ := set.MGF1Hash()
	sampler, err := bliss.NewSampler(newHash, []byte(seed), set)
	if err != nil {
		log.Fatal(err)
	}
	xs := make([]float64, samples)
	for i := range xs {
		z, err := sampler.Gaussian()
		if err != nil {
			log.Fatal(err)
		}
		xs[i] = float64(z)
	}
	st := computeStats(xs)

	binWidth := float64(set.Sigma) / 4
	bins := map[int]int{}
	for _, v := range xs {
		bins[int(math.Floor(v/binWidth))]++
	}
	var order []int
	for k := range bins {
		order = append(order, k)
	}
	sort.Ints(order)

	labels := make([]string, 0, len(order))
	counts := make([]opts.BarData, 0, len(order))
	for _, k := range order {
		labels = append(labels, fmt.Sprintf("%.0f", (float64(k)+0.5)*binWidth))
		counts = append(counts, opts.BarData{Value: bins[k]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("%s Gaussian sampler", set.Name),
			Subtitle: fmt.Sprintf("n=%d mean=%.2f std=%.1f (target sigma %d) min=%.0f max=%.0f skew=%.3f",
				st.Count, st.Mean, st.Std, set.Sigma, st.Min, st.Max, st.Skewness),
		}),
	)
	bar.SetXAxis(labels).AddSeries("count", counts)
	return bar
}

// signatureChart runs verified signing round trips and reports encoded sizes.
func signatureChart(set *bliss.ParameterSet, signings int) *charts.Bar {
	rng, err := bliss.NewSeededRNG([]byte("bliss-analysis-keygen"))
	if err != nil {
		log.Fatal(err)
	}
	key, err := keys.GenerateWithRNG(set.ID, rng)
	if err != nil {
		log.Fatal(err)
	}
	labels := make([]string, 0, signings)
	sizes := make([]opts.BarData, 0, signings)
	for i := 0; i < signings; i++ {
		msg := []byte(fmt.Sprintf("analysis message %d", i))
		sig, err := key.Sign(keys.SignBlissWithSHA512, msg)
		if err != nil {
			log.Fatal(err)
		}
		if err := key.PublicKey().Verify(keys.SignBlissWithSHA512, msg, sig); err != nil {
			log.Fatal(err)
		}
		labels = append(labels, fmt.Sprintf("%d", i))
		sizes = append(sizes, opts.BarData{Value: len(sig)})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    fmt.Sprintf("%s signature sizes", set.Name),
		Subtitle: fmt.Sprintf("%d verified signatures", signings),
	}))
	bar.SetXAxis(labels).AddSeries("bytes", sizes)
	return bar
}
