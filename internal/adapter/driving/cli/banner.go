package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/primanata/aws-monitoring-hub-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
         /$$      /$$                     /$$   /$$           /$$
        | $$$    /$$$                    | $$  | $$          | $$
        | $$$$  /$$$$  /$$$$$$  /$$$$$$$ | $$  | $$ /$$   /$$| $$$$$$$
        | $$ $$/$$ $$ /$$__  $$| $$__  $$| $$$$$$$$| $$  | $$| $$__  $$
        | $$  $$$| $$| $$  \ $$| $$  \ $$| $$__  $$| $$  | $$| $$  \ $$
        | $$\  $ | $$| $$  | $$| $$  | $$| $$  | $$| $$  | $$| $$  | $$
        | $$ \/  | $$|  $$$$$$/| $$  | $$| $$  | $$|  $$$$$$/| $$$$$$$/
        |__/     |__/ \______/ |__/  |__/|__/  |__/ \______/ |_______/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("AWS Monitoring Hub CLI (v%s)", formattedVersion)))
}
