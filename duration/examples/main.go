// This script demonstrates Kaplan-Meier estimation, the log-rank test and
// proportional hazards regression, using the 'diabetic' data from the R
// survival package.  The file diabetic.csv is expected in the working
// directory, with columns id, laser, age, eye, trt, risk, time, status.

package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/kshedden/survstat/duration"
	"github.com/kshedden/survstat/statmodel"
)

func readData(side string) (*duration.SurvData, error) {

	fid, err := os.Open("diabetic.csv")
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	rd := csv.NewReader(fid)

	// Skip the header
	if _, err := rd.Read(); err != nil {
		return nil, err
	}

	var obs []duration.Observation
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if row[3] != side {
			continue
		}

		// Handle numeric columns
		var x [5]float64
		for k, j := range []int{2, 4, 5, 6, 7} {
			x[k], err = strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, fmt.Errorf("column %d: %w", j, err)
			}
		}

		obs = append(obs, duration.Observation{
			Time:   x[3],
			Status: x[4],
			Covariates: []statmodel.Value{
				statmodel.Categorical(row[1]),
				statmodel.Numeric(x[0]),
				statmodel.Numeric(x[1]),
				statmodel.Numeric(x[2]),
			},
		})
	}

	return duration.NewSurvData(obs, []string{"laser", "age", "trt", "risk"})
}

func main() {

	logger := log.New(os.Stderr, "", 0)

	data, err := readData("left")
	if err != nil {
		logger.Fatal(err)
	}

	strata, err := duration.StratifiedSurvfunc(context.Background(), data, "laser", 0.95)
	if err != nil {
		logger.Fatal(err)
	}

	plt := duration.NewSurvCurvePlotter()
	for _, st := range strata {
		fmt.Printf("laser=%s: %d event times, median survival %.2f\n", st.Level,
			st.Survfunc.Curve().Len(), st.Survfunc.Median())
		if err := plt.Add(st.Survfunc.Curve(), st.Level, false); err != nil {
			logger.Fatal(err)
		}
	}
	if err := plt.Plot().Save("diabetic_km.png"); err != nil {
		logger.Fatal(err)
	}

	lr, err := duration.LogRank(data, "laser")
	if err != nil {
		logger.Fatal(err)
	}
	fmt.Printf("Log-rank test: chi2=%.3f df=%d p=%.4f\n\n", lr.Stat, lr.DF, lr.PValue)

	design, err := statmodel.NewDesign(data, []string{"laser", "age", "trt", "risk"}, nil)
	if err != nil {
		logger.Fatal(err)
	}

	model, err := duration.NewPHReg(data, design, nil)
	if err != nil {
		logger.Fatal(err)
	}

	result, err := model.Fit()
	if err != nil {
		logger.Fatal(err)
	}

	fmt.Printf("%v\n", result.Summary())

	c, err := result.Concordance(100)
	if err != nil {
		logger.Fatal(err)
	}
	fmt.Printf("Concordance (tau=100): %.3f\n\n", c)

	// Predicted survival for a treated eye at the mean age and risk
	means := design.Means()
	z, err := design.Vector(map[string]float64{
		"age":  means[1],
		"trt":  1,
		"risk": means[3],
	})
	if err != nil {
		logger.Fatal(err)
	}

	pred, err := duration.NewBreslow(result).Predict(z)
	if err != nil {
		logger.Fatal(err)
	}
	for _, pt := range pred.Points() {
		fmt.Printf("%8.2f %8.4f %8.4f %8.4f\n", pt.Time, pt.Surv, pt.Lower, pt.Upper)
	}
}
