package seedtool

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/amshq/pulse/pkg/logger"
	"github.com/google/uuid"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	chapterSizeDivisor = 8
)

// Constants for member count ranges.
const (
	typicalChapterMin    = 150
	typicalChapterRange  = 250
	largeChapterMin      = 400
	largeChapterRange    = 200
	smallChapterMin      = 40
	smallChapterRange    = 110
	flagshipChapterMin   = 600
	flagshipChapterRange = 400
	startupChapterMin    = 15
	startupChapterRange  = 25
)

// Constants for counter generation.
const (
	eventsPerYearMin     = 4
	eventsPerYearRange   = 20
	attendanceRatioMin   = 1.5
	attendanceRatioRange = 4.0
	revenuePerMemberMin  = 50.0
	revenuePerMemberMax  = 400.0
	renewalRatioMin      = 0.55
	renewalRatioRange    = 0.43
	expiringRatioMin     = 0.6
	expiringRatioRange   = 0.4
	yearsActiveMin       = 1
	yearsActiveRange     = 40
)

// Constants for chapter size cases.
const (
	caseTypicalChapter  = 0
	caseLargeChapter    = 1
	caseSmallChapter    = 2
	caseFlagshipChapter = 3
	caseStartupChapter  = 4
	caseTypicalChapter2 = 5
	caseTypicalChapter3 = 6
	caseSmallChapter2   = 7
)

// regions a generated chapter can belong to. Repeats keep every region
// populated enough for peer comparisons.
var regions = []string{
	"CA", "TX", "NY", "FL", "IL", "WA", "MA", "CO", "GA", "OH",
	"CA", "TX", "NY", "FL", "IL",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max) using crypto/rand.
func getRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// generateChapters creates the specified number of submissions with unique
// chapter IDs.
func generateChapters(ctx context.Context, config *Config, stats *Stats) ([]Submission, error) {
	logger.Get().Info(ctx, "generating chapters with unique IDs", logger.Int("numChapters", config.NumChapters))

	subs := make([]Submission, config.NumChapters)

	// Pre-allocate chapter IDs to ensure uniqueness
	chapterIDs := make([]string, config.NumChapters)
	for i := 0; i < config.NumChapters; i++ {
		chapterIDs[i] = uuid.New().String()
	}

	// Generate submissions concurrently
	type genResult struct {
		index int
		sub   Submission
		err   error
	}

	resultChan := make(chan genResult, config.NumChapters)

	// Use worker pool for generation
	workerCount := minInt(config.Workers, config.NumChapters)
	chaptersPerWorker := config.NumChapters / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * chaptersPerWorker
		end := start + chaptersPerWorker
		if worker == workerCount-1 {
			end = config.NumChapters // Last worker gets the remainder
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- genResult{index: i, err: ctx.Err()}
					return
				default:
					resultChan <- genResult{index: i, sub: generateSingleChapter(i, chapterIDs[i])}
				}
			}
		}(start, end)
	}

	// Collect results
	for i := 0; i < config.NumChapters; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during chapter generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate chapter %d: %w", result.index, result.err)
			}
			subs[result.index] = result.sub
		}
	}

	stats.ChaptersGenerated = len(subs)
	logger.Get().Info(ctx, "generated chapters successfully", logger.Int("count", len(subs)))

	return subs, nil
}

// generateSingleChapter creates one submission with the given index and
// chapter ID.
func generateSingleChapter(index int, chapterID string) Submission {
	members := generateMemberCount()
	yearsActive := yearsActiveMin + getRandomInt(yearsActiveRange)

	events := (eventsPerYearMin + getRandomInt(eventsPerYearRange)) * yearsActive
	attendance := int(float64(members) * (attendanceRatioMin + getRandomFloat()*attendanceRatioRange))
	revenue := float64(members) * (revenuePerMemberMin + getRandomFloat()*(revenuePerMemberMax-revenuePerMemberMin))

	expiring := int(float64(members) * (expiringRatioMin + getRandomFloat()*expiringRatioRange))
	renewed := int(float64(expiring) * (renewalRatioMin + getRandomFloat()*renewalRatioRange))

	// Unique submission ID
	randNum := getRandomInt(10000)
	submissionID := "seed_" + strconv.Itoa(index) + "_" + strconv.FormatInt(time.Now().Unix(), 10) + "_" + strconv.Itoa(randNum)

	return Submission{
		SubmissionID: submissionID,
		Chapter: Chapter{
			ID:              chapterID,
			Name:            "Chapter " + strconv.Itoa(index+1),
			Region:          regions[getRandomInt(len(regions))],
			MemberCount:     members,
			EventCount:      events,
			EventAttendance: attendance,
			AnnualRevenue:   revenue,
			RenewedMembers:  renewed,
			ExpiringMembers: expiring,
			YearsActive:     yearsActive,
		},
	}
}

// generateMemberCount creates a member count with varied distribution.
func generateMemberCount() int {
	switch getRandomInt(chapterSizeDivisor) {
	case caseLargeChapter:
		// Large chapters (400 - 600)
		return largeChapterMin + getRandomInt(largeChapterRange)
	case caseSmallChapter, caseSmallChapter2:
		// Small chapters (40 - 150)
		return smallChapterMin + getRandomInt(smallChapterRange)
	case caseFlagshipChapter:
		// Flagship chapters (600 - 1000) - rare
		return flagshipChapterMin + getRandomInt(flagshipChapterRange)
	case caseStartupChapter:
		// Startup chapters (15 - 40) - rare
		return startupChapterMin + getRandomInt(startupChapterRange)
	case caseTypicalChapter, caseTypicalChapter2, caseTypicalChapter3:
		// Typical chapters (150 - 400) - most common
		return typicalChapterMin + getRandomInt(typicalChapterRange)
	default:
		return typicalChapterMin + getRandomInt(typicalChapterRange)
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
