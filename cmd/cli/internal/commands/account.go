package commands

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/wolfeidau/gasdesk/internal/server"
)

type RegisterCmd struct {
	Individual   RegisterIndividualCmd   `cmd:"" help:"Register an individual customer"`
	Organization RegisterOrganizationCmd `cmd:"" help:"Register an organization"`
}

type RegisterIndividualCmd struct {
	NIC      string `help:"National identity card number" name:"nic" required:""`
	Name     string `help:"Full name" required:""`
	Phone    string `help:"Phone number" required:""`
	Email    string `help:"Email address" required:""`
	Password string `help:"Password (at least 8 characters)" env:"GASDESK_PASSWORD" required:""`
}

func (r *RegisterIndividualCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	resp, err := globals.client().RegisterIndividual(ctx, server.IndividualRegistration{
		NIC:         r.NIC,
		Name:        r.Name,
		PhoneNumber: r.Phone,
		Email:       r.Email,
		Password:    r.Password,
	})
	if err != nil {
		return explain("failed to register", err)
	}

	return globals.saveSession(resp)
}

type RegisterOrganizationCmd struct {
	BusiRegNo string `help:"Business registration number" required:""`
	Name      string `help:"Organization name" required:""`
	Phone     string `help:"Organization phone number" required:""`
	Email     string `help:"Email address" required:""`
	Password  string `help:"Password (at least 8 characters)" env:"GASDESK_PASSWORD" required:""`
	Address   string `help:"Organization address" required:""`
	Image     string `help:"JPEG image of the business registration certificate" type:"existingfile" required:""`
}

func (r *RegisterOrganizationCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	image, err := os.ReadFile(r.Image)
	if err != nil {
		return fmt.Errorf("failed to read validation image: %w", err)
	}

	resp, err := globals.client().RegisterOrganization(ctx, server.OrganizationRegistration{
		BusiRegNo:       r.BusiRegNo,
		OrgName:         r.Name,
		OrgPhoneNumber:  r.Phone,
		Email:           r.Email,
		Password:        r.Password,
		Address:         r.Address,
		ValidationImage: base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return explain("failed to register", err)
	}

	return globals.saveSession(resp)
}

type LoginCmd struct {
	Kind     string `help:"Account kind" enum:"individual,organization" default:"individual"`
	Email    string `help:"Email address" required:""`
	Password string `help:"Password" env:"GASDESK_PASSWORD" required:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	resp, err := globals.client().Login(ctx, server.LoginRequest{
		Kind:     l.Kind,
		Email:    l.Email,
		Password: l.Password,
	})
	if err != nil {
		return explain("failed to log in", err)
	}

	return globals.saveSession(resp)
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(globals *Globals) error {
	store, err := globals.sessions()
	if err != nil {
		return err
	}
	if err := store.Delete(globals.Profile); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}

type ProfileCmd struct{}

func (p *ProfileCmd) Run(ctx context.Context, globals *Globals) error {
	ctx = globals.context(ctx)

	c, err := globals.authedClient(ctx)
	if err != nil {
		return err
	}

	profile, err := c.Profile(ctx)
	if err != nil {
		return explain("failed to fetch profile", err)
	}

	keyLabel := "NIC:"
	if profile.Kind == "organization" {
		keyLabel = "Reg. number:"
	}

	fmt.Printf("%-14s %s\n", "Name:", profile.Name)
	fmt.Printf("%-14s %s\n", keyLabel, profile.Key)
	fmt.Printf("%-14s %s\n", "Phone:", profile.Phone)
	fmt.Printf("%-14s %s\n", "Email:", profile.Email)
	if profile.Address != "" {
		fmt.Printf("%-14s %s\n", "Address:", profile.Address)
	}
	return nil
}
