package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maueyecare/clinic/internal/domain/inventory"
	"github.com/maueyecare/clinic/pkg/pagination"
)

func (a *app) inventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Browse and import the spectacle catalog",
	}
	cmd.AddCommand(
		a.spectaclesListCmd(),
		a.spectaclesGetCmd(),
		a.inventoryUploadCmd(),
		a.inventoryImageCmd(),
		a.inventoryAnalyzeCmd(),
	)
	return cmd
}

func (a *app) spectaclesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectacles",
		Short: "List catalog items",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}

			f := inventory.Filter{}
			f.Search, _ = cmd.Flags().GetString("search")
			f.Brand, _ = cmd.Flags().GetString("brand")
			f.FrameShape, _ = cmd.Flags().GetString("frame-shape")
			f.LensType, _ = cmd.Flags().GetString("lens-type")
			f.Gender, _ = cmd.Flags().GetString("gender")
			if cmd.Flags().Changed("min-price") {
				v, _ := cmd.Flags().GetFloat64("min-price")
				f.MinPrice = &v
			}
			if cmd.Flags().Changed("max-price") {
				v, _ := cmd.Flags().GetFloat64("max-price")
				f.MaxPrice = &v
			}
			if cmd.Flags().Changed("in-stock") {
				v, _ := cmd.Flags().GetBool("in-stock")
				f.InStock = &v
			}
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("page-size")

			res, err := inventory.NewService(a.client).ListSpectacles(cmd.Context(), f,
				pagination.Params{Page: page, PageSize: size})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %-25s %-12s %-10s %-8s %s\n", "ID", "NAME", "BRAND", "PRICE", "STOCK", "SHAPE")
			for _, sp := range res.Items {
				stock := "out"
				if sp.InStock {
					stock = fmt.Sprintf("%d", sp.Quantity)
				}
				fmt.Fprintf(w, "%-6d %-25s %-12s %-10.2f %-8s %s\n",
					sp.ID, sp.Name, sp.Brand, sp.Price, stock, sp.FrameShape)
			}
			fmt.Fprintf(w, "Page %d of %d item(s)", res.PageNum, res.Total)
			if res.HasMore() {
				fmt.Fprint(w, " (more available)")
			}
			fmt.Fprintln(w)
			return nil
		},
	}
	cmd.Flags().String("search", "", "Name or brand substring")
	cmd.Flags().String("brand", "", "Exact brand")
	cmd.Flags().String("frame-shape", "", "Frame shape")
	cmd.Flags().String("lens-type", "", "Lens type")
	cmd.Flags().String("gender", "", "Target gender")
	cmd.Flags().Float64("min-price", 0, "Minimum price")
	cmd.Flags().Float64("max-price", 0, "Maximum price")
	cmd.Flags().Bool("in-stock", true, "Only in-stock items")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", 20, "Items per page")
	return cmd
}

func (a *app) spectaclesGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spectacle",
		Short: "Show one catalog item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, _ := cmd.Flags().GetInt("id")
			sp, err := inventory.NewService(a.client).GetSpectacle(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-15s %s\n", "Name", sp.Name)
			fmt.Fprintf(w, "%-15s %s\n", "Brand", sp.Brand)
			fmt.Fprintf(w, "%-15s %.2f\n", "Price", sp.Price)
			fmt.Fprintf(w, "%-15s %s / %s / %s\n", "Frame", sp.FrameMaterial, sp.FrameShape, sp.LensType)
			fmt.Fprintf(w, "%-15s %s, %s\n", "Audience", sp.Gender, sp.AgeGroup)
			fmt.Fprintf(w, "%-15s %d (in stock: %t)\n", "Quantity", sp.Quantity, sp.InStock)
			if sp.Description != "" {
				fmt.Fprintf(w, "%-15s %s\n", "Description", sp.Description)
			}
			return nil
		},
	}
	cmd.Flags().Int("id", 0, "Spectacle id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func (a *app) inventoryUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Bulk import catalog files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			svc := inventory.NewService(a.client)
			var res *inventory.UploadResult
			if filepath.Ext(path) == ".csv" {
				res, err = svc.UploadCSV(cmd.Context(), filepath.Base(path), f)
			} else {
				res, err = svc.Upload(cmd.Context(), filepath.Base(path), f)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, skipped %d. %s\n",
				res.Imported, res.Skipped, res.Message)
			return nil
		},
	}
	cmd.Flags().String("file", "", "File to import (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) inventoryImageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload-image",
		Short: "Attach a product photo to a catalog item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			id, _ := cmd.Flags().GetInt("id")
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := inventory.NewService(a.client).UploadImage(cmd.Context(), id, filepath.Base(path), f)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
	cmd.Flags().Int("id", 0, "Spectacle id (required)")
	cmd.Flags().String("file", "", "Image file (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (a *app) inventoryAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze-image",
		Short: "Run the backend's frame attribute analysis on a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := inventory.NewService(a.client).AnalyzeImage(cmd.Context(), filepath.Base(path), f)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Suggestions:")
			for k, v := range res.Suggestions {
				fmt.Fprintf(w, "  %-15s %v\n", k, v)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Image file (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
