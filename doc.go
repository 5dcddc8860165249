// Package kudos_ledger reúne o serviço de carteiras e reconhecimentos sobre
// DynamoDB.
//
// Visão Geral:
// O módulo expõe login, consulta de saldo, transferências entre carteiras e
// reconhecimentos pagos em recompensas. Não há transações multi-registro: cada
// transferência é uma saga com escrita antecipada (ver pacote ledger).
//
// Sub-Pacotes Principais:
//
// 1. dyndb:
//   - Store[T] tipado sobre o DynamoDB, com erros classificados (Outcome).
//   - Paginação genérica: All, One, First e Pages.
//   - Sequence para contadores atômicos.
//
// 2. repository:
//   - Repository[T] com validação e hooks antes de gravar.
//   - Repositórios de usuários, carteiras, transações, recompensas,
//     reconhecimentos e tokens de pagamento de uso único.
//
// 3. ledger:
//   - Engine.Transfer e Engine.Recognize.
//
// 4. session:
//   - Operações expostas aos clientes e os códigos de erro estáveis.
//
// 5. envloader e pkg/config:
//   - Configuração por tags "env"/"envDefault", arquivo YAML e SSM.
//
// Exemplo de Início Rápido:
//
//	cfg, err := config.Load(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	a, err := app.Build(ctx, cfg, app.Clients{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	resp, err := a.Service.Login(ctx, session.LoginRequest{Email: "ana@example.com"})
//
// Os binários ficam em cmd/server (HTTP local ou Lambda) e cmd/ledgerctl
// (validação de configuração e relatório de transferências pendentes).
package kudos_ledger
