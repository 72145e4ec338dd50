// synctl es la herramienta de línea de comando para trabajar con los tokens
// del servicio: emitir JWT firmados, sellar claims como session tokens
// cifrados y inspeccionar tokens arbitrarios. Pensada para generar fixtures
// y debuggear flujos de autenticación.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/syncup/internal/token"
)

func main() {
	var (
		secret = envOr("SECRET_KEY", "")
		alg    = envOr("JWT_ALGORITHM", "HS256")
	)

	root := &cobra.Command{
		Use:   "synctl",
		Short: "CLI de tokens de Syncup (mint, seal, inspect)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("falta el secret (flag --secret o env SECRET_KEY)")
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&secret, "secret", secret, "secret compartido (env SECRET_KEY)")
	root.PersistentFlags().StringVar(&alg, "alg", alg, "algoritmo de firma (env JWT_ALGORITHM)")

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Operaciones sobre tokens",
	}

	// ─── mint: JWT firmado ───
	var (
		mintEmail  string
		mintName   string
		mintRole   string
		mintTenant string
		mintSub    string
		mintTTL    time.Duration
		mintExtra  string
	)
	mintCmd := &cobra.Command{
		Use:   "mint",
		Short: "Emitir un JWT firmado con las claims dadas",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := token.Claims{}
			if mintExtra != "" {
				if err := json.Unmarshal([]byte(mintExtra), &claims); err != nil {
					return fmt.Errorf("claims JSON inválidas: %w", err)
				}
			}
			set := func(k, v string) {
				if v != "" {
					claims[k] = v
				}
			}
			set("email", mintEmail)
			set("name", mintName)
			set("role", mintRole)
			set("tenant_id", mintTenant)
			set("sub", mintSub)

			raw, err := token.Sign(claims, mintTTL, token.Config{Secret: secret, Algorithm: alg})
			if err != nil {
				return err
			}
			fmt.Println(raw)
			return nil
		},
	}
	mintCmd.Flags().StringVar(&mintEmail, "email", "", "claim email")
	mintCmd.Flags().StringVar(&mintName, "name", "", "claim name")
	mintCmd.Flags().StringVar(&mintRole, "role", "", "claim role")
	mintCmd.Flags().StringVar(&mintTenant, "tenant", "", "claim tenant_id")
	mintCmd.Flags().StringVar(&mintSub, "sub", "", "claim sub")
	mintCmd.Flags().DurationVar(&mintTTL, "ttl", time.Hour, "tiempo de vida")
	mintCmd.Flags().StringVar(&mintExtra, "claims", "", "claims adicionales como JSON")

	// ─── seal: session token cifrado ───
	var (
		sealClaims string
		sealSecure bool
	)
	sealCmd := &cobra.Command{
		Use:   "seal",
		Short: "Sellar claims JSON como session token cifrado (JWE)",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := token.Claims{}
			if err := json.Unmarshal([]byte(sealClaims), &claims); err != nil {
				return fmt.Errorf("claims JSON inválidas: %w", err)
			}
			dec := token.NewSessionDecoder(secret, sealSecure)
			raw, err := dec.Seal(claims)
			if err != nil {
				return err
			}
			fmt.Println(raw)
			return nil
		},
	}
	sealCmd.Flags().StringVar(&sealClaims, "claims", "{}", "claims como JSON")
	sealCmd.Flags().BoolVar(&sealSecure, "secure", false, "usar el salt label __Secure- (producción)")

	// ─── inspect: clasificar y decodificar ───
	var inspectSecure bool
	inspectCmd := &cobra.Command{
		Use:   "inspect <token>",
		Short: "Clasificar un token y mostrar la identidad normalizada",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := args[0]
			cfg := token.Config{Secret: secret, Algorithm: alg}

			family, err := token.Classify(raw)
			if err != nil {
				return err
			}
			fmt.Printf("family: %s\n", family)

			var claims token.Claims
			switch family {
			case token.FamilyEncrypted:
				claims, err = token.NewSessionDecoder(secret, inspectSecure).Open(raw)
			default:
				claims, err = token.VerifySigned(raw, cfg)
			}
			if err != nil {
				return err
			}

			printJSON("claims", claims)

			id, err := token.Normalize(claims, cfg)
			if err != nil {
				return err
			}
			printJSON("identity", id)
			return nil
		},
	}
	inspectCmd.Flags().BoolVar(&inspectSecure, "secure", false, "usar el salt label __Secure- (producción)")

	tokenCmd.AddCommand(mintCmd, sealCmd, inspectCmd)
	root.AddCommand(tokenCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printJSON(label string, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("%s: %s\n", label, string(b))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
