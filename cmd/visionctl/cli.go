package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"visiond/pkg/types"
)

// client is a thin HTTP client over the visiond API.
type client struct {
	base string
	hc   *http.Client
}

func newClient(base string) *client {
	return &client{base: strings.TrimRight(base, "/"), hc: &http.Client{}}
}

func (c *client) getJSON(path string, out any) error {
	resp, err := c.hc.Get(c.base + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiError(resp *http.Response) error {
	var e types.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err == nil && e.Error != "" {
		return fmt.Errorf("%s (%d)", e.Error, e.Code)
	}
	return fmt.Errorf("unexpected status: %s", resp.Status)
}

func buildRootCmd() *cobra.Command {
	var addr string
	root := &cobra.Command{
		Use:           "visionctl",
		Short:         "Client for the visiond capture-analysis daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultAddr := "http://127.0.0.1:8080"
	if v := os.Getenv("VISIOND_ADDR"); v != "" {
		if strings.HasPrefix(v, ":") {
			v = "http://127.0.0.1" + v
		}
		defaultAddr = v
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "Base URL of the visiond server")

	models := &cobra.Command{
		Use:   "models",
		Short: "List stored model artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp types.ModelsResponse
			if err := newClient(addr).getJSON("/models", &resp); err != nil {
				return err
			}
			if len(resp.Models) == 0 {
				fmt.Println("no artifacts stored")
				return nil
			}
			for _, m := range resp.Models {
				fmt.Printf("%s\t%d bytes\t%s\n", m.ID, m.SizeBytes, m.Path)
			}
			return nil
		},
	}

	pull := &cobra.Command{
		Use:   "pull <url> <filename>",
		Short: "Download a model artifact into the store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(newClient(addr), args[0], args[1])
		},
	}

	rm := &cobra.Command{
		Use:   "rm <filename>",
		Short: "Delete a stored model artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(addr)
			req, err := http.NewRequest(http.MethodDelete, c.base+"/models/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			resp, err := c.hc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return apiError(resp)
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}

	var prompt string
	analyze := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Submit an image for analysis and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(newClient(addr), args[0], prompt)
		},
	}
	analyze.Flags().StringVar(&prompt, "prompt", "", "Prompt to analyze the image with")

	history := &cobra.Command{
		Use:   "history",
		Short: "Show the analysis history",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp types.HistoryResponse
			if err := newClient(addr).getJSON("/history", &resp); err != nil {
				return err
			}
			for _, e := range resp.Entries {
				fmt.Printf("%s  [%s]  %s\n", time.Unix(e.At, 0).Format(time.RFC3339), e.Prompt, e.Text)
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp types.StatusResponse
			if err := newClient(addr).getJSON("/status", &resp); err != nil {
				return err
			}
			b, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	}

	root.AddCommand(models, pull, rm, analyze, history, status)
	return root
}

// runPull streams NDJSON progress lines to the terminal.
func runPull(c *client, srcURL, filename string) error {
	body, err := json.Marshal(types.PullRequest{URL: srcURL, Filename: filename})
	if err != nil {
		return err
	}
	resp, err := c.hc.Post(c.base+"/models/pull", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 64*1024), 64*1024)
	for sc.Scan() {
		var line types.PullProgress
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			continue
		}
		switch line.State {
		case types.DownloadComplete:
			fmt.Printf("\rdone: %s\n", line.Path)
			return nil
		case types.DownloadFailed:
			fmt.Print("\r")
			return fmt.Errorf("pull failed: %s", line.Error)
		default:
			fmt.Printf("\r%s %3.0f%%", filename, line.Progress*100)
		}
	}
	return sc.Err()
}

// runAnalyze submits the frame, then polls until the analysis finishes.
func runAnalyze(c *client, imagePath, prompt string) error {
	frame, err := os.ReadFile(imagePath)
	if err != nil {
		return err
	}
	u := c.base + "/analyze"
	if prompt != "" {
		u += "?prompt=" + url.QueryEscape(prompt)
	}
	resp, err := c.hc.Post(u, "application/octet-stream", bytes.NewReader(frame))
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	for {
		time.Sleep(300 * time.Millisecond)
		var ar types.AnalysisResponse
		if err := c.getJSON("/analysis", &ar); err != nil {
			return err
		}
		if !ar.Busy && ar.Text != "" {
			fmt.Println(ar.Text)
			return nil
		}
	}
}
