package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recruit-eval/internal/config"
	"recruit-eval/internal/db"
	"recruit-eval/internal/domain"
	"recruit-eval/internal/repository"
	"recruit-eval/internal/service"
)

const (
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorReset  = "\033[0m"
)

var (
	maxScale      float64
	trustUpstream bool
	payloadPath   string
	candidateID   string
	processID     string
)

var rootCmd = &cobra.Command{
	Use:   "score_check",
	Short: "Calcula la compatibilidad de candidatos fuera del servidor HTTP",
}

var payloadCmd = &cobra.Command{
	Use:   "payload",
	Short: "Evalua un payload JSON (respuestas + perfil del proceso)",
	RunE:  runPayload,
}

var candidateCmd = &cobra.Command{
	Use:   "candidate",
	Short: "Evalua un candidato leyendo respuestas y perfil desde la base",
	RunE:  runCandidate,
}

func init() {
	rootCmd.PersistentFlags().Float64Var(&maxScale, "max-scale", domain.DefaultMaxScale, "Escala maxima de peso por opcion")
	rootCmd.PersistentFlags().BoolVar(&trustUpstream, "trust-upstream", false, "Usar el puntaje ponderado provisto por las respuestas")

	payloadCmd.Flags().StringVarP(&payloadPath, "file", "f", "-", "Archivo JSON con el payload (- para stdin)")

	candidateCmd.Flags().StringVar(&candidateID, "candidate", "", "ID del candidato")
	candidateCmd.Flags().StringVar(&processID, "process", "", "ID del proceso")
	_ = candidateCmd.MarkFlagRequired("candidate")
	_ = candidateCmd.MarkFlagRequired("process")

	rootCmd.AddCommand(payloadCmd, candidateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPayload(cmd *cobra.Command, _ []string) error {
	var in io.Reader = cmd.InOrStdin()
	if payloadPath != "-" {
		f, err := os.Open(payloadPath)
		if err != nil {
			return fmt.Errorf("open payload: %w", err)
		}
		defer f.Close()
		in = f
	}

	var payload domain.EvaluationPayload
	if err := json.NewDecoder(in).Decode(&payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	result, err := service.Evaluate(payload.Responses, payload.Profile(), service.ScoringOptions{
		MaxScale:           maxScale,
		TrustUpstreamScore: trustUpstream,
		WeightMap:          payload.WeightMap,
	})
	return printResult(cmd.OutOrStdout(), result, err)
}

func runCandidate(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	svc := service.NewCompatibilityService(
		repository.NewPgResponseRepository(pool),
		repository.NewPgProcessRepository(pool),
		nil,
		logger,
		service.ScoringOptions{MaxScale: maxScale, TrustUpstreamScore: trustUpstream},
		1,
	)
	result, err := svc.EvaluateCandidate(ctx, candidateID, processID)
	return printResult(cmd.OutOrStdout(), result, err)
}

func printResult(w io.Writer, result domain.CompatibilityResult, err error) error {
	if errors.Is(err, domain.ErrNoCandidateData) || (err == nil && result.InsufficientData()) {
		fmt.Fprintf(w, "%sSin datos suficientes para calcular compatibilidad%s\n", colorYellow, colorReset)
		return nil
	}
	if err != nil {
		return err
	}

	for _, group := range result.TraitGroups {
		fmt.Fprintf(w, "%s%-20s%s %6.1f%%\n", colorCyan, group.GroupID, colorReset, group.GroupCompatibility)
	}
	fmt.Fprintf(w, "%sCompatibilidad total: %.1f%% (%s)%s\n", colorGreen, result.OverallScore, result.ScoreSource, colorReset)
	if result.DominantProfile != "" {
		fmt.Fprintf(w, "Perfil dominante: %s (%.1f%%)\n", result.DominantProfile, result.DominantProfileMatchPercentage)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
