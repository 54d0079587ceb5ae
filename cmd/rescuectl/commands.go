package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Albertoimpl/animal-rescue/internal/domain"
	"github.com/Albertoimpl/animal-rescue/pkg/httpclient"
)

func newAnimalsCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "animals",
		Short: "List the animals available for adoption",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command) error {
			animals, err := s.client.GetAnimals(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), animals)
		}),
	}
}

func newWhoamiCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the user the backend sees",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command) error {
			name, err := s.client.GetUsername(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), name)
			return err
		}),
	}
}

func newAdoptionCmd(s *session) *cobra.Command {
	adoptionCmd := &cobra.Command{Use: "adoption", Short: "Manage adoption requests"}

	// submit
	var in domain.AdoptionRequestInput
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an adoption request for an animal",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command) error {
			resp, err := s.client.SubmitAdoptionRequest(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), resp)
		}),
	}
	submitCmd.Flags().StringVar(&in.AnimalID, "animal", "", "Animal ID (required)")
	submitCmd.Flags().StringVar(&in.Email, "email", "", "Contact email")
	submitCmd.Flags().StringVar(&in.Notes, "notes", "", "Notes for the shelter")
	_ = submitCmd.MarkFlagRequired("animal")
	adoptionCmd.AddCommand(submitCmd)

	// edit
	var edit domain.AdoptionRequestInput
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Replace the email and notes of an adoption request",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command) error {
			resp, err := s.client.EditAdoptionRequest(cmd.Context(), edit)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), resp)
		}),
	}
	editCmd.Flags().StringVar(&edit.AnimalID, "animal", "", "Animal ID (required)")
	editCmd.Flags().StringVar(&edit.AdoptionRequestID, "request", "", "Adoption request ID (required)")
	editCmd.Flags().StringVar(&edit.Email, "email", "", "Contact email")
	editCmd.Flags().StringVar(&edit.Notes, "notes", "", "Notes for the shelter")
	_ = editCmd.MarkFlagRequired("animal")
	_ = editCmd.MarkFlagRequired("request")
	adoptionCmd.AddCommand(editCmd)

	// delete
	var del domain.AdoptionRequestInput
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Withdraw an adoption request",
		Args:  cobra.NoArgs,
		RunE: s.run(func(cmd *cobra.Command) error {
			resp, err := s.client.DeleteAdoptionRequest(cmd.Context(), del)
			if err != nil {
				return err
			}
			return printStatus(cmd.OutOrStdout(), resp)
		}),
	}
	deleteCmd.Flags().StringVar(&del.AnimalID, "animal", "", "Animal ID (required)")
	deleteCmd.Flags().StringVar(&del.AdoptionRequestID, "request", "", "Adoption request ID (required)")
	_ = deleteCmd.MarkFlagRequired("animal")
	_ = deleteCmd.MarkFlagRequired("request")
	adoptionCmd.AddCommand(deleteCmd)

	return adoptionCmd
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printStatus writes the status line, followed by the body when there is one.
func printStatus(w io.Writer, resp httpclient.Response) error {
	if _, err := fmt.Fprintln(w, resp.Status()); err != nil {
		return err
	}
	if body := resp.Body(); len(body) > 0 {
		_, err := fmt.Fprintln(w, string(body))
		return err
	}
	return nil
}
