package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/utils"
)

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long: `Prints the bcrypt hash of the given password.  When no argument is
given the password is read from the first line of standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var plain string
		if len(args) == 1 {
			plain = args[0]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			plain = strings.TrimRight(line, "\r\n")
		}
		if plain == "" {
			return errors.New("password must not be empty")
		}
		cost := hashCost
		if !cmd.Flags().Changed("cost") {
			// validation errors do not matter here, only BCRYPT_COST does
			cfg, _ := config.FromEnv()
			cost = cfg.BcryptCost
		}
		hash, err := utils.HashPassword(plain, cost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 12, "bcrypt cost (default BCRYPT_COST)")
}
