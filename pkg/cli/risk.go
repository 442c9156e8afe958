package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/cli/config"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/domain/types"
	"github.com/secmon-lab/grc-risk/pkg/service/event"
	"github.com/secmon-lab/grc-risk/pkg/service/ggrc"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// riskClient bundles the model and the transport used by the risk commands
type riskClient struct {
	api   *ggrc.Client
	model *usecase.RiskModel
	docs  *usecase.RelatedDocuments
}

func newRiskClient(cfg *config.Client) (*riskClient, error) {
	api, err := cfg.Configure()
	if err != nil {
		return nil, err
	}

	bus := event.New()
	m := usecase.NewRiskModel(api,
		usecase.WithEventBus(bus),
		usecase.WithPersonResolver(api),
		usecase.WithContextResolver(api),
		usecase.WithRiskObjectResolver(api),
	)
	docs := usecase.NewRelatedDocuments(bus, api, nil)

	return &riskClient{api: api, model: m, docs: docs}, nil
}

func (c *riskClient) Close() {
	c.docs.Close()
}

// riskAttrs holds the attribute flags of create and update
type riskAttrs struct {
	title            string
	description      string
	notes            string
	slug             string
	status           string
	contact          int64
	secondaryContact int64
	owners           []int64
	contextID        int64
	referenceURL     string
}

func (a *riskAttrs) flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Risk title", Destination: &a.title},
		&cli.StringFlag{Name: "description", Usage: "Risk description", Destination: &a.description},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes", Destination: &a.notes},
		&cli.StringFlag{Name: "slug", Usage: "Risk code (defaults to RISK-<id>)", Destination: &a.slug},
		&cli.StringFlag{Name: "status", Usage: "Status (Draft, Deprecated, Active)", Destination: &a.status},
		&cli.Int64Flag{Name: "contact", Usage: "Primary contact person id", Destination: &a.contact},
		&cli.Int64Flag{Name: "secondary-contact", Usage: "Secondary contact person id", Destination: &a.secondaryContact},
		&cli.Int64SliceFlag{Name: "owner", Usage: "Owner person id (repeatable)", Destination: &a.owners},
		&cli.Int64Flag{Name: "context", Usage: "Context id", Destination: &a.contextID},
		&cli.StringFlag{Name: "reference-url", Usage: "Reference URL", Destination: &a.referenceURL},
	}
}

// apply copies the flags set on c into risk
func (a *riskAttrs) apply(c *cli.Command, risk *model.Risk) {
	if c.IsSet("title") {
		risk.Title = a.title
	}
	if c.IsSet("description") {
		risk.Description = a.description
	}
	if c.IsSet("notes") {
		risk.Notes = a.notes
	}
	if c.IsSet("slug") {
		risk.Slug = a.slug
	}
	if c.IsSet("status") {
		risk.Status = types.RiskStatus(a.status)
	}
	if c.IsSet("contact") {
		risk.Contact = optionalStub(types.ObjectTypePerson, a.contact)
	}
	if c.IsSet("secondary-contact") {
		risk.SecondaryContact = optionalStub(types.ObjectTypePerson, a.secondaryContact)
	}
	if c.IsSet("owner") {
		risk.Owners = make([]*model.Stub, 0, len(a.owners))
		for _, id := range a.owners {
			risk.Owners = append(risk.Owners, model.NewPersonStub(id))
		}
	}
	if c.IsSet("context") {
		risk.Context = optionalStub(types.ObjectTypeContext, a.contextID)
	}
	if c.IsSet("reference-url") {
		risk.ReferenceURL = a.referenceURL
	}
}

// optionalStub maps a zero id to no reference
func optionalStub(typ types.ObjectType, id int64) *model.Stub {
	if id == 0 {
		return nil
	}
	return model.NewStub(typ, id)
}

func cmdRisk() *cli.Command {
	var clientCfg config.Client

	return &cli.Command{
		Name:  "risk",
		Usage: "Manage risks on a grc-risk server",
		Flags: clientCfg.Flags(),
		Commands: []*cli.Command{
			cmdRiskList(&clientCfg),
			cmdRiskGet(&clientCfg),
			cmdRiskCreate(&clientCfg),
			cmdRiskUpdate(&clientCfg),
			cmdRiskDelete(&clientCfg),
			cmdRiskDescribe(),
		},
	}
}

func cmdRiskList(cfg *config.Client) *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List risks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rc, err := newRiskClient(cfg)
			if err != nil {
				return err
			}
			defer rc.Close()

			records, err := rc.model.FetchAll(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list risks")
			}

			if asJSON {
				risks := make([]*model.Risk, len(records))
				for i, rec := range records {
					risks[i] = rec.Snapshot()
				}
				return writeJSON(output, map[string]any{"risks": risks})
			}

			tw := tabwriter.NewWriter(output, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, colorHeader("ID\tCODE\tSTATE\tTITLE"))
			for _, rec := range records {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rec.ID, rec.Slug, colorStatus(rec.Status), rec.Title)
			}
			if err := tw.Flush(); err != nil {
				return goerr.Wrap(err, "failed to write output")
			}
			return nil
		},
	}
}

// resolvedView is the JSON shape of `risk get --resolve`
type resolvedView struct {
	Risk             *model.Risk         `json:"risk"`
	Contact          *model.Person       `json:"contact,omitempty"`
	SecondaryContact *model.Person       `json:"secondary_contact,omitempty"`
	ModifiedBy       *model.Person       `json:"modified_by,omitempty"`
	Owners           []*model.Person     `json:"owners,omitempty"`
	Context          *model.Context      `json:"context,omitempty"`
	RiskObjects      []*model.RiskObject `json:"risk_objects,omitempty"`
	Documents        []*model.Document   `json:"documents,omitempty"`
}

func cmdRiskGet(cfg *config.Client) *cli.Command {
	var id int64
	var resolve bool

	return &cli.Command{
		Name:  "get",
		Usage: "Show one risk",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Usage: "Risk id", Required: true, Destination: &id},
			&cli.BoolFlag{Name: "resolve", Usage: "Resolve referenced people, context, risk objects and documents", Destination: &resolve},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rc, err := newRiskClient(cfg)
			if err != nil {
				return err
			}
			defer rc.Close()

			rec, err := rc.model.FetchOne(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
			}

			if !resolve {
				return writeJSON(output, map[string]any{"risk": rec.Snapshot()})
			}

			resolved, err := rc.model.Resolve(ctx, rec)
			if err != nil {
				return goerr.Wrap(err, "failed to resolve risk", goerr.V(model.RiskIDKey, id))
			}
			if err := rc.docs.Refresh(ctx, id); err != nil {
				return err
			}

			return writeJSON(output, &resolvedView{
				Risk:             resolved.Risk,
				Contact:          resolved.Contact,
				SecondaryContact: resolved.SecondaryContact,
				ModifiedBy:       resolved.ModifiedBy,
				Owners:           resolved.Owners,
				Context:          resolved.Context,
				RiskObjects:      resolved.RiskObjects,
				Documents:        rc.docs.Documents(id),
			})
		},
	}
}

func cmdRiskCreate(cfg *config.Client) *cli.Command {
	var attrs riskAttrs

	return &cli.Command{
		Name:  "create",
		Usage: "Create a risk",
		Flags: attrs.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			risk := &model.Risk{}
			attrs.apply(c, risk)
			return saveRisk(ctx, cfg, risk)
		},
	}
}

func cmdRiskUpdate(cfg *config.Client) *cli.Command {
	var id int64
	var attrs riskAttrs

	flags := append([]cli.Flag{
		&cli.Int64Flag{Name: "id", Usage: "Risk id", Required: true, Destination: &id},
	}, attrs.flags()...)

	return &cli.Command{
		Name:  "update",
		Usage: "Update attributes of a risk",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rc, err := newRiskClient(cfg)
			if err != nil {
				return err
			}
			defer rc.Close()

			rec, err := rc.model.FetchOne(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to get risk", goerr.V(model.RiskIDKey, id))
			}
			attrs.apply(c, rec.Risk)

			return rc.save(ctx, rec)
		},
	}
}

func saveRisk(ctx context.Context, cfg *config.Client, risk *model.Risk) error {
	rc, err := newRiskClient(cfg)
	if err != nil {
		return err
	}
	defer rc.Close()

	rec, err := rc.model.New(risk)
	if err != nil {
		return err
	}
	return rc.save(ctx, rec)
}

// save stores rec and prints the stored record with its documents
func (c *riskClient) save(ctx context.Context, rec *usecase.RiskRecord) error {
	if err := c.model.Save(ctx, rec); err != nil {
		if verr, ok := model.AsValidationError(err); ok {
			return goerr.Wrap(err, "risk is invalid", goerr.V("fields", strings.Join(verr.Fields(), ",")))
		}
		return goerr.Wrap(err, "failed to save risk")
	}

	return writeJSON(output, map[string]any{
		"risk":      rec.Snapshot(),
		"documents": c.docs.Documents(rec.ID),
	})
}

func cmdRiskDelete(cfg *config.Client) *cli.Command {
	var id int64

	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Usage:   "Delete a risk",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Usage: "Risk id", Required: true, Destination: &id},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rc, err := newRiskClient(cfg)
			if err != nil {
				return err
			}
			defer rc.Close()

			if err := rc.model.Destroy(ctx, id); err != nil {
				return goerr.Wrap(err, "failed to delete risk", goerr.V(model.RiskIDKey, id))
			}
			fmt.Fprintf(output, "deleted risk %d\n", id)
			return nil
		},
	}
}

func cmdRiskDescribe() *cli.Command {
	return &cli.Command{
		Name:  "describe",
		Usage: "Print the Risk descriptor",
		Action: func(ctx context.Context, c *cli.Command) error {
			return writeJSON(output, model.RiskDescriptor())
		},
	}
}
