package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage backend configuration",
	Long: `Manage storage backend blocks in the configuration file.

Each named backend block becomes a legal storagePlatform value. Signing
credentials are stored alongside the block under the same name.`,
}

var configureBackendCmd = &cobra.Command{
	Use:   "backend <name>",
	Short: "Add or update a storage backend interactively",
	Long: `Add or update a named storage backend block interactively.

You will be prompted for:
  - Backend type (gcs, s3, memory)
  - Endpoint, bucket and region as applicable
  - Signing credentials

The result is written to the configuration file.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureBackend,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured backends",
	RunE:  runConfigureList,
}

var configureFile string

func init() {
	configureCmd.PersistentFlags().StringVar(&configureFile, "file", "config.yaml", "configuration file to edit")
	configureCmd.AddCommand(configureBackendCmd)
	configureCmd.AddCommand(configureListCmd)

	rootCmd.AddCommand(configureCmd)
}

// configDoc is the loosely-typed view of the config file used for editing.
// Editing through a map keeps sections this command does not own intact.
type configDoc map[string]any

func loadConfigDoc(path string) (configDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return configDoc{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	doc := configDoc{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return doc, nil
}

func saveConfigDoc(path string, doc configDoc) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (d configDoc) section(name string) map[string]any {
	if s, ok := d[name].(map[string]any); ok {
		return s
	}
	s := map[string]any{}
	d[name] = s
	return s
}

func runConfigureBackend(_ *cobra.Command, args []string) error {
	name := args[0]

	doc, err := loadConfigDoc(configureFile)
	if err != nil {
		return err
	}

	backends := doc.section("backends")
	if _, exists := backends[name]; exists {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Backend '%s' already exists. Update it", name),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	typeSelect := promptui.Select{
		Label: "Backend type",
		Items: []string{"gcs", "s3", "memory"},
	}
	_, backendType, err := typeSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	block := map[string]any{"type": backendType}

	endpointPrompt := promptui.Prompt{Label: "Endpoint URL (blank for provider default)"}
	endpoint, err := endpointPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	if endpoint != "" {
		block["endpoint"] = endpoint
	}

	if backendType != "memory" {
		bucketPrompt := promptui.Prompt{
			Label: "Bucket",
			Validate: func(input string) error {
				if input == "" {
					return errors.New("bucket is required")
				}
				return nil
			},
		}
		bucket, promptErr := bucketPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		block["bucket"] = bucket
	}

	if backendType == "s3" {
		regionPrompt := promptui.Prompt{Label: "Region", Default: "us-east-1"}
		region, promptErr := regionPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		block["region"] = region

		pathStylePrompt := promptui.Prompt{
			Label:     "Use path-style addressing",
			IsConfirm: true,
		}
		if _, promptErr = pathStylePrompt.Run(); promptErr == nil {
			block["path_style_access"] = true
		}
	}

	readOnlyPrompt := promptui.Prompt{
		Label:     "Read-only backend",
		IsConfirm: true,
	}
	if _, promptErr := readOnlyPrompt.Run(); promptErr == nil {
		block["read_only"] = true
	}

	cred := map[string]any{"backend": name}
	switch backendType {
	case "gcs":
		accessPrompt := promptui.Prompt{Label: "Service account email (access id)"}
		accessID, promptErr := accessPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		keyPrompt := promptui.Prompt{Label: "Private key PEM file"}
		keyFile, promptErr := keyPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		cred["access_id"] = accessID
		cred["private_key_file"] = keyFile

	case "s3":
		accessPrompt := promptui.Prompt{Label: "Access key id"}
		accessID, promptErr := accessPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		secretPrompt := promptui.Prompt{Label: "Secret access key", Mask: '*'}
		secret, promptErr := secretPrompt.Run()
		if promptErr != nil {
			return handlePromptError(promptErr)
		}
		cred["access_id"] = accessID
		cred["secret"] = secret
	}

	backends[name] = block

	if backendType != "memory" {
		creds := doc.section("credentials")
		inline, _ := creds["inline"].([]any)

		replaced := false
		for i, entry := range inline {
			m, ok := entry.(map[string]any)
			if ok && m["backend"] == name {
				inline[i] = cred
				replaced = true
				break
			}
		}
		if !replaced {
			inline = append(inline, cred)
		}
		creds["inline"] = inline
	}

	if err := saveConfigDoc(configureFile, doc); err != nil {
		return err
	}

	fmt.Printf("Backend '%s' saved to %s.\n", name, configureFile)
	return nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	doc, err := loadConfigDoc(configureFile)
	if err != nil {
		return err
	}

	backends, ok := doc["backends"].(map[string]any)
	if !ok || len(backends) == 0 {
		fmt.Println("No backends configured.")
		fmt.Println("Run 'vana configure backend <name>' to add one.")
		return nil
	}

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		block, _ := backends[name].(map[string]any)
		backendType, _ := block["type"].(string)
		bucket, _ := block["bucket"].(string)
		if bucket != "" {
			fmt.Printf("%s\t%s\tbucket=%s\n", name, backendType, bucket)
		} else {
			fmt.Printf("%s\t%s\n", name, backendType)
		}
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
