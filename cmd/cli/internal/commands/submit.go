package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wolfeidau/gasdesk/internal/server"
	"gopkg.in/yaml.v3"
)

type RequestConfig struct {
	Outlet        string `yaml:"outlet" json:"outlet"`
	CylinderType  string `yaml:"cylinderType" json:"cylinderType"`
	CylinderCount int    `yaml:"cylinderCount" json:"cylinderCount"`
	RequestDate   string `yaml:"requestDate" json:"requestDate"`
}

type SubmitCmd struct {
	Outlet       string `help:"Outlet name (see the outlets command)"`
	CylinderType string `help:"Cylinder type, e.g. 5 or \"12.5 kg\"" name:"type"`
	Count        int    `help:"Number of cylinders"`
	Date         string `help:"Pickup date (YYYY-MM-DD), defaults to today"`
	Config       string `help:"YAML/JSON request file path"`
}

func (s *SubmitCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	// Load config from file if provided
	if s.Config != "" {
		if err := s.loadConfigFile(); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if s.Date == "" {
		s.Date = time.Now().Format("2006-01-02")
	}

	c, err := globals.authedClient(ctx)
	if err != nil {
		return err
	}

	req, err := c.Submit(ctx, server.RequestForm{
		Outlet:        s.Outlet,
		CylinderType:  s.CylinderType,
		CylinderCount: s.Count,
		RequestDate:   s.Date,
	})
	if err != nil {
		return explain("failed to submit request", err)
	}

	fmt.Println("Request submitted successfully")
	printRequest(req)
	return nil
}

func (s *SubmitCmd) loadConfigFile() error {
	data, err := os.ReadFile(s.Config)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var config RequestConfig

	// Determine file format by extension
	if strings.HasSuffix(strings.ToLower(s.Config), ".json") {
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	// Flags take precedence over the file
	if s.Outlet == "" {
		s.Outlet = config.Outlet
	}
	if s.CylinderType == "" {
		s.CylinderType = config.CylinderType
	}
	if s.Count == 0 {
		s.Count = config.CylinderCount
	}
	if s.Date == "" {
		s.Date = config.RequestDate
	}

	return nil
}

type RequestCmd struct{}

func (r *RequestCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	c, err := globals.authedClient(ctx)
	if err != nil {
		return err
	}

	req, err := c.CurrentRequest(ctx)
	if err != nil {
		return explain("failed to fetch request", err)
	}
	if req == nil {
		fmt.Println("No request submitted.")
		return nil
	}

	printRequest(req)
	return nil
}

func printRequest(req *server.Request) {
	fmt.Printf("%-16s %s\n", "Outlet:", req.Outlet)
	fmt.Printf("%-16s %s\n", "Cylinder type:", req.CylinderType)
	fmt.Printf("%-16s %d\n", "Cylinder count:", req.CylinderCount)
	fmt.Printf("%-16s %s\n", "Pickup date:", req.RequestDate)
	fmt.Printf("%-16s %s\n", "Status:", req.Status)
}
