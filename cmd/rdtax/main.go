package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rdtax/credit-calculator/internal/calculation"
	"github.com/rdtax/credit-calculator/internal/config"
	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/rdtax/credit-calculator/internal/output"
	"github.com/rdtax/credit-calculator/internal/qre"
	"github.com/rdtax/credit-calculator/internal/qualification"
	"github.com/rdtax/credit-calculator/internal/rules"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements a minimal logger using the standard log package.
// The engines themselves are pure and never log.
type simpleCLILogger struct{}

func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var cliLog = simpleCLILogger{}

// snapshotRegistry holds every rules snapshot this process resolves, keyed by
// version, with the built-in default pre-registered.
var snapshotRegistry = rules.NewRegistry()

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "rdtax",
	Short: "R&D Tax Credit Calculator CLI",
	Long:  "Deterministic, auditable IRC §41 R&D tax credit qualification and calculation",
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "rdtax %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

// loadRules resolves the rules snapshot through the registry: the latest
// registered version by default, or an override file supplied via --rules,
// which is registered so repeated loads of the same version must agree.
func loadRules(cmd *cobra.Command) (*rules.Engine, error) {
	rulesFile, _ := cmd.Flags().GetString("rules")
	if rulesFile == "" {
		return snapshotRegistry.Latest(), nil
	}
	engine, err := rules.LoadSnapshotFile(rulesFile)
	if err != nil {
		return nil, err
	}
	if err := snapshotRegistry.Register(engine); err != nil {
		return nil, err
	}
	cliLog.Infof("loaded rules snapshot %s (%s) from %s", engine.Version(), engine.Hash(), rulesFile)
	return engine, nil
}

func loadStudy(path string) (*domain.StudyInput, error) {
	parser := config.NewInputParser()
	return parser.LoadFromFile(path)
}

// qualifiedProjectSet derives the QRE gate from qualification results:
// qualified and partially qualified projects count.
func qualifiedProjectSet(results []domain.ProjectQualificationResult) map[string]bool {
	set := make(map[string]bool, len(results))
	for _, r := range results {
		set[r.ProjectID] = r.Status == domain.StatusQualified || r.Status == domain.StatusPartiallyQualified
	}
	return set
}

func evaluateAll(r *rules.Engine, study *domain.StudyInput) []domain.ProjectQualificationResult {
	engine := qualification.NewEngine(r)
	results := make([]domain.ProjectQualificationResult, 0, len(study.Projects))
	for _, project := range study.Projects {
		results = append(results, engine.EvaluateProject(project, linkedEvidence(study, project), study.States))
	}
	return results
}

// linkedEvidence returns the study evidence; evidence relevance flags already
// scope items to elements, so all items are passed to each project.
func linkedEvidence(study *domain.StudyInput, _ domain.Project) []domain.EvidenceItem {
	return study.Evidence
}

func qualifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qualify [study-file]",
		Short: "Evaluate projects against the four-part test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(cmd)
			if err != nil {
				return err
			}
			study, err := loadStudy(args[0])
			if err != nil {
				return err
			}
			results := evaluateAll(r, study)
			return writeJSON(os.Stdout, results)
		},
	}
	return cmd
}

func qreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qre [study-file]",
		Short: "Compute the qualified research expense summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(cmd)
			if err != nil {
				return err
			}
			study, err := loadStudy(args[0])
			if err != nil {
				return err
			}
			qualResults := evaluateAll(r, study)
			summary := qre.NewEngine(r).CalculateStudyQREs(*study, qualifiedProjectSet(qualResults))
			return writeJSON(os.Stdout, summary)
		},
		Args: cobra.ExactArgs(1),
	}
	return cmd
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [study-file]",
		Short: "Run the full credit calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(cmd)
			if err != nil {
				return err
			}
			study, err := loadStudy(args[0])
			if err != nil {
				return err
			}
			if statesFlag, _ := cmd.Flags().GetString("states"); statesFlag != "" {
				study.States = strings.Split(statesFlag, ",")
			}
			if method, _ := cmd.Flags().GetString("method"); method != "" && method != "auto" {
				study.CPAMethodOverride = method
				if study.CPAMethodOverrideReason == "" {
					study.CPAMethodOverrideReason = "selected via --method flag"
				}
			}

			qualResults := evaluateAll(r, study)
			summary := qre.NewEngine(r).CalculateStudyQREs(*study, qualifiedProjectSet(qualResults))
			result, err := calculation.NewEngine(r).CalculateFullCredit(*study, summary, qualResults)
			if err != nil {
				return err
			}
			for _, flag := range result.RiskFlags {
				if flag.Severity == domain.RiskHigh {
					cliLog.Warnf("%s: %s", flag.Code, flag.Message)
				}
			}

			format, _ := cmd.Flags().GetString("format")
			return output.NewReportGenerator().GenerateReport(os.Stdout, result, format)
		},
	}
	cmd.Flags().String("states", "", "Comma-separated state codes (overrides the study file)")
	cmd.Flags().String("method", "auto", "Federal method: regular, asc, or auto")
	cmd.Flags().String("format", "console", "Output format: console or json")
	return cmd
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Print the active rule snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadRules(cmd)
			if err != nil {
				return err
			}
			state, _ := cmd.Flags().GetString("state")
			if state != "" {
				sr, ok := r.StateRules(state)
				if !ok {
					return fmt.Errorf("state %s is not configured in rules version %s", state, r.Version())
				}
				return writeJSON(os.Stdout, sr)
			}
			fmt.Fprintf(os.Stdout, "Rules version: %s\nHash: %s\nStates: %s\n",
				r.Version(), r.Hash(), strings.Join(r.StateCodes(), ", "))
			return writeJSON(os.Stdout, r.FederalRules())
		},
	}
	cmd.Flags().String("state", "", "Print one state's rules")
	return cmd
}

func writeJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	rootCmd.PersistentFlags().String("rules", "", "Path to a rules snapshot YAML override")
	rootCmd.AddCommand(qualifyCmd())
	rootCmd.AddCommand(qreCmd())
	rootCmd.AddCommand(calculateCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		logger := simpleCLILogger{}
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
