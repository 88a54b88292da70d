package cmd

import "testing"

func TestRootCmd(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "checklist" {
		t.Errorf("Expected command use to be 'checklist', got %s", rootCmd.Use)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	expected := []string{"list", "add", "toggle", "sync", "import-email", "ui", "version"}

	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "name", "mode", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected persistent flag %q to be defined", name)
		}
	}
}

func TestRootCmd_DefaultMode(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("mode")
	if flag == nil {
		t.Fatal("mode flag is not defined")
	}
	if flag.DefValue != "local" {
		t.Errorf("Expected default mode to be 'local', got %s", flag.DefValue)
	}
}

func TestRequireName(t *testing.T) {
	orig := listName
	defer func() { listName = orig }()

	listName = ""
	if _, err := requireName(); err == nil {
		t.Error("Expected an error when --name is empty")
	}

	listName = "Grocery List"
	name, err := requireName()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if name != "Grocery List" {
		t.Errorf("Expected name 'Grocery List', got %s", name)
	}
}
